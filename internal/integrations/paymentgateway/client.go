package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Logger интерфейс логирования для клиента
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент платежного шлюза (zarinpal-совместимый протокол)
type Client struct {
	baseURL     string
	merchantID  string
	callbackURL string
	httpClient  *http.Client
	log         Logger
}

// NewClient создает новый экземпляр клиента платежного шлюза
func NewClient(baseURL, merchantID, callbackURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		merchantID:  merchantID,
		callbackURL: callbackURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// RequestPayment создает платеж в шлюзе и возвращает authority
// и URL страницы оплаты, на которую нужно перенаправить пациента
func (c *Client) RequestPayment(ctx context.Context, amount int64, description string) (string, string, error) {
	reqBody := paymentRequest{
		MerchantID:  c.merchantID,
		Amount:      amount,
		CallbackURL: c.callbackURL,
		Description: description,
	}

	var respBody paymentRequestResponse
	if err := c.post(ctx, "/pg/v4/payment/request.json", reqBody, &respBody); err != nil {
		return "", "", err
	}

	if respBody.Data.Code != codeOK || respBody.Data.Authority == "" {
		c.log.Error("Payment request declined: code=%d message=%s", respBody.Data.Code, respBody.Data.Message)
		return "", "", fmt.Errorf("%w: code=%d", ErrPaymentDeclined, respBody.Data.Code)
	}

	payURL := fmt.Sprintf("%s/pg/StartPay/%s", c.baseURL, respBody.Data.Authority)
	c.log.Info("Payment requested: authority=%s amount=%d", respBody.Data.Authority, amount)

	return respBody.Data.Authority, payURL, nil
}

// VerifyPayment подтверждает платеж по authority и возвращает ref_id шлюза
func (c *Client) VerifyPayment(ctx context.Context, amount int64, authority string) (string, error) {
	reqBody := verifyRequest{
		MerchantID: c.merchantID,
		Amount:     amount,
		Authority:  authority,
	}

	var respBody verifyResponse
	if err := c.post(ctx, "/pg/v4/payment/verify.json", reqBody, &respBody); err != nil {
		return "", err
	}

	// 101 означает, что платеж уже был подтвержден ранее: считаем успехом,
	// чтобы повторный callback не ронял подтвержденную запись
	if respBody.Data.Code != codeOK && respBody.Data.Code != codeAlreadyVerified {
		c.log.Error("Payment verify declined: authority=%s code=%d message=%s", authority, respBody.Data.Code, respBody.Data.Message)
		return "", fmt.Errorf("%w: code=%d", ErrPaymentDeclined, respBody.Data.Code)
	}

	refID := strconv.FormatInt(respBody.Data.RefID, 10)
	c.log.Info("Payment verified: authority=%s ref_id=%s", authority, refID)

	return refID, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody interface{}) error {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal request: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return nil
}
