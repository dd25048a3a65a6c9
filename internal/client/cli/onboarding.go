package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/carbuyer/internal/client/models"
	"github.com/dmitrijs2005/carbuyer/internal/client/services"
)

// Onboard asks for the target vehicle. It can be set only once.
func (a *App) Onboard(ctx context.Context) error {
	printlnFn(fmt.Sprintf("What car are you looking for? (year %d-%d, e.g. %d-%d)",
		models.MinPreferenceYear, models.MaxPreferenceYear, models.SuggestedYearTo, models.SuggestedYearFrom))

	yearText, err := GetSimpleText(a.reader, "Year", a.out)
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(yearText)
	if err != nil {
		printlnFn("Year must be a number")
		return err
	}
	printlnFn("Popular makes:", strings.Join(models.VehicleMakes, ", "))
	carMake, err := GetSimpleText(a.reader, "Make", a.out)
	if err != nil {
		return err
	}
	carMake = models.CanonicalMake(carMake)
	model, err := GetSimpleText(a.reader, "Model", a.out)
	if err != nil {
		return err
	}

	prefs := models.Preferences{Year: year, Make: carMake, Model: model}
	if err := a.onboarding.Submit(ctx, prefs); err != nil {
		printlnFn(userMessage(err, services.MsgSavePreferencesFailed))
		return err
	}

	printlnFn("Target vehicle saved:", prefs.String())
	if a.guard(services.RouteDashboard) {
		if err := a.ensureDashboard(ctx); err == nil {
			a.printThreads()
		}
	}
	return nil
}
