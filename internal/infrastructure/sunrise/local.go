package sunrise

import (
	"context"
	"fmt"
	"time"

	gosunrise "github.com/nathan-osman/go-sunrise"

	"ISSNotifier/internal/domain"
	"ISSNotifier/internal/ports"
)

// Local computes sun times offline for the current UTC date.
type Local struct {
	now func() time.Time
}

var _ ports.SunTimesSource = (*Local)(nil)

// NewLocal returns a calculator bound to the wall clock.
func NewLocal() *Local {
	return &Local{now: time.Now}
}

// SunTimes never touches the network; polar day or night yields ErrParse
// because there is no sunrise/sunset pair to compare against.
func (l *Local) SunTimes(ctx context.Context, location domain.Coordinates) (domain.DayNightWindow, error) {
	if err := ctx.Err(); err != nil {
		return domain.DayNightWindow{}, err
	}

	day := l.now().UTC()
	rise, set := gosunrise.SunriseSunset(location.Latitude, location.Longitude, day.Year(), day.Month(), day.Day())
	if rise.IsZero() || set.IsZero() {
		return domain.DayNightWindow{}, fmt.Errorf("%w: no sunrise/sunset at %.4f,%.4f on %s",
			domain.ErrParse, location.Latitude, location.Longitude, day.Format("2006-01-02"))
	}

	return newWindow(rise, set), nil
}
