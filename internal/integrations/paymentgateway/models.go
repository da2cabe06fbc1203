package paymentgateway

// paymentRequest тело запроса на создание платежа
type paymentRequest struct {
	MerchantID  string `json:"merchant_id"`
	Amount      int64  `json:"amount"`
	CallbackURL string `json:"callback_url"`
	Description string `json:"description"`
}

// paymentRequestResponse ответ шлюза на создание платежа
type paymentRequestResponse struct {
	Data struct {
		Code      int    `json:"code"`
		Authority string `json:"authority"`
		Message   string `json:"message"`
	} `json:"data"`
	Errors interface{} `json:"errors"`
}

// verifyRequest тело запроса на подтверждение платежа
type verifyRequest struct {
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Authority  string `json:"authority"`
}

// verifyResponse ответ шлюза на подтверждение платежа
type verifyResponse struct {
	Data struct {
		Code    int    `json:"code"`
		RefID   int64  `json:"ref_id"`
		Message string `json:"message"`
	} `json:"data"`
	Errors interface{} `json:"errors"`
}

// Коды ответа шлюза.
const (
	codeOK              = 100
	codeAlreadyVerified = 101
)
