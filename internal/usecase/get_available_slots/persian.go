package get_available_slots

import (
	"fmt"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"

	"github.com/simaclinic/booking-service/internal/domain"
)

// persianDigits замена арабских цифр на персидские
var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// jalaliDateKey ключ дня в ответе: дата по солнечной хиджре, "1404-08-26"
func jalaliDateKey(t time.Time) string {
	pt := ptime.New(t)
	return fmt.Sprintf("%04d-%02d-%02d", pt.Year(), int(pt.Month()), pt.Day())
}

// readableStart человекочитаемая подпись начала слота на фарси:
// день недели, число, месяц, год и время с персидскими цифрами
func readableStart(t time.Time) string {
	pt := ptime.New(t)
	label := fmt.Sprintf("%s %d %s %d، ساعت %s",
		pt.Weekday().String(), pt.Day(), pt.Month().String(), pt.Year(),
		t.Format(domain.TimeFormat))
	return persianDigits.Replace(label)
}
