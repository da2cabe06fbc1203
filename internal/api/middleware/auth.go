package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	"github.com/simaclinic/booking-service/internal/domain"
)

type contextKey string

const (
	userIDKey  contextKey = "user_id"
	isStaffKey contextKey = "is_staff"
)

// Заголовки аутентификации, проставляются API-гейтвеем после проверки токена
const (
	HeaderUserID = "X-User-ID"
	HeaderStaff  = "X-User-Staff"
)

// Auth требует заголовок X-User-ID и кладет идентификатор пациента
// в контекст запроса. X-User-Staff: true помечает сотрудника клиники
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get(HeaderUserID)
		if userIDStr == "" {
			handlers.RespondError(w, http.StatusUnauthorized, "требуется заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondError(w, http.StatusUnauthorized, "некорректный X-User-ID")
			return
		}

		isStaff := r.Header.Get(HeaderStaff) == "true"

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		ctx = context.WithValue(ctx, isStaffKey, isStaff)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID возвращает ID аутентифицированного пользователя из контекста
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// IsStaff возвращает признак сотрудника из контекста
func IsStaff(ctx context.Context) bool {
	isStaff, _ := ctx.Value(isStaffKey).(bool)
	return isStaff
}

// Actor собирает BookingActor из контекста запроса.
// onBehalfOf позволяет сотруднику действовать от имени другого пациента;
// для обычного пациента значение игнорируется
func Actor(ctx context.Context, onBehalfOf *int64) (domain.BookingActor, bool) {
	userID, ok := UserID(ctx)
	if !ok {
		return domain.BookingActor{}, false
	}

	actor := domain.BookingActor{
		EffectivePatientID: userID,
		IsStaffAssisted:    IsStaff(ctx),
	}

	if actor.IsStaffAssisted && onBehalfOf != nil && *onBehalfOf > 0 {
		actor.EffectivePatientID = *onBehalfOf
	}

	return actor, true
}
