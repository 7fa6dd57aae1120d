package specialists

import (
	"context"
	"fmt"
	"strings"

	"charter-concierge/internal/domain/entity"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

const ORDER_DATA_HEADER = "Here is the data for the current order:"

// switchContexts builds the opening lines a specialist gets when the chat is handed over to it
type switchContexts struct {
	handOver *usecase.HandOverService
	charter  *usecase.CharterOptionsService
	logger   logger.Logger
}

func newSwitchContexts(handOver *usecase.HandOverService, charter *usecase.CharterOptionsService, log logger.Logger) *switchContexts {
	return &switchContexts{
		handOver: handOver,
		charter:  charter,
		logger:   log.With("component", "switch"),
	}
}

// SwitchTo hands the chat over with the target's context. Eligibility is checked by the hand-over service.
func (c *switchContexts) SwitchTo(ctx context.Context, dc usecase.DispatchContext, target entity.AssistantID, request string, hasRequest bool) usecase.ToolResponse {
	var build usecase.ContextLines
	switch target {
	case entity.AssistantFlight:
		build = func() ([]string, string) { return c.flightLines(dc.Order, request, hasRequest), "" }
	case entity.AssistantFlightOptions:
		build = func() ([]string, string) { return c.flightOptionsLines(ctx, dc.Order, request, hasRequest) }
	case entity.AssistantCatering:
		build = func() ([]string, string) { return c.cateringLines(ctx, dc.Order, request, hasRequest) }
	case entity.AssistantTransfer:
		build = func() ([]string, string) { return c.transferLines(dc.Order, request, hasRequest) }
	default:
		return c.handOver.HandOver(dc, target, request, hasRequest)
	}
	return c.handOver.SwitchToWith(dc, target, build)
}

func (c *switchContexts) flightLines(order entity.OrderState, request string, hasRequest bool) []string {
	c.logger.Debug("Switching to basic flight options...")

	lines := []string{ORDER_DATA_HEADER}
	if hasRequest {
		lines = append(lines, "A request from client: "+request)
	}
	if order.FlightOrder != nil {
		lines = append(lines, "Current options selected by user: "+toJSON(order.FlightOrder))
	} else {
		lines = append(lines, "No active flight order so far")
	}
	return lines
}

func (c *switchContexts) flightOptionsLines(ctx context.Context, order entity.OrderState, request string, hasRequest bool) ([]string, string) {
	c.logger.Debug("Switching to charter flight options...")

	lines := []string{ORDER_DATA_HEADER}
	flightOrder := order.FlightOrder
	if !entity.AreBasicFlightOptionsSet(flightOrder) {
		return nil, basicOptionsMissing("changing flight details")
	}

	lines = append(lines, "Current flight order state: "+toJSON(flightOrder))
	if hasRequest {
		lines = append(lines, "Known flight request from client: "+request)
	} else {
		lines = append(lines, "Configure the flight for the client")
	}

	options, err := c.charter.GetCharterOptions(ctx, *flightOrder.From, *flightOrder.To, *flightOrder.DepartureDate, *flightOrder.Plane)
	if err != nil {
		c.logger.Warn("Failed to get charter options", "error", err)
		return nil, err.Error()
	}
	lines = append(lines, "Here are available flight options: "+toJSON(options))
	return lines, ""
}

func (c *switchContexts) cateringLines(ctx context.Context, order entity.OrderState, request string, hasRequest bool) ([]string, string) {
	c.logger.Debug("Switching to catering...")

	lines := make([]string, 0, 4)
	if hasRequest {
		lines = append(lines, "A request from client: "+request)
	}

	flightOrder := order.FlightOrder
	if !entity.AreBasicFlightOptionsSet(flightOrder) {
		return nil, basicOptionsMissing("ordering catering")
	}
	if !entity.AreFlightDetailsSet(flightOrder.Details) {
		return nil, flightDetailsMissing("ordering catering")
	}

	if order.CateringDetails != nil {
		lines = append(lines, "Current catering order: "+toJSON(order.CateringDetails))
	} else {
		lines = append(lines, "No active catering order so far")
	}

	departureMa, err := c.charter.GetMetropolitanArea(ctx, *flightOrder.From)
	if err != nil {
		c.logger.Warn("Failed to get departure area", "error", err)
		return nil, err.Error()
	}
	lines = append(lines,
		fmt.Sprintf("The client is flying from: %s, %s", departureMa.Name, departureMa.Region),
		fmt.Sprintf("Number of passengers on board: %d", *flightOrder.Details.PaxNumber),
	)
	return lines, ""
}

func (c *switchContexts) transferLines(order entity.OrderState, request string, hasRequest bool) ([]string, string) {
	c.logger.Debug("Switching to transfer...")

	lines := []string{ORDER_DATA_HEADER}
	if hasRequest {
		lines = append(lines, "A request from client: "+request)
	}

	flightOrder := order.FlightOrder
	if !entity.AreBasicFlightOptionsSet(flightOrder) {
		return nil, basicOptionsMissing("ordering transfer")
	}
	details := flightOrder.Details
	if !entity.AreFlightDetailsSet(details) {
		return nil, flightDetailsMissing("ordering transfer")
	}

	if order.TransferDetails != nil {
		lines = append(lines, "Current options selected by user: "+toJSON(order.TransferDetails))
	} else {
		lines = append(lines, "No active transfer order so far")
	}

	departure, err := departureDateTime(*flightOrder.DepartureDate, *details.DepartureTime)
	if err != nil {
		return nil, err.Error()
	}
	lines = append(lines,
		"Departure airport: "+toJSON(details.FromAirport),
		"Arrival airport: "+toJSON(details.ToAirport),
		"Departure date-time: "+departure.String(),
		"Arrival date-time: "+departure.PlusMinutes(*details.FlightTimeMinutes).String(),
	)
	return lines, ""
}

// departureDateTime combines the order date with the departure time of day.
// A full date-time in departureTime contributes only its time of day.
func departureDateTime(departureDate, departureTime string) (entity.LocalDateTime, error) {
	date, err := entity.ParseLocalDate(departureDate)
	if err != nil {
		return entity.LocalDateTime{}, fmt.Errorf("Invalid departure date: %s", departureDate)
	}
	if dt, err := entity.ParseLocalDateTime(departureTime); err == nil {
		return dt.WithDate(date), nil
	}
	dt, err := entity.ParseLocalDateTime(date.String() + "T" + strings.TrimSpace(departureTime))
	if err != nil {
		return entity.LocalDateTime{}, fmt.Errorf("Invalid departure time: %s", departureTime)
	}
	return dt, nil
}

func basicOptionsMissing(action string) string {
	return fmt.Sprintf(
		"Basic flight options are not yet configured. Ask %s to create the flight order before %s.",
		entity.AssistantFlight.Name(),
		action,
	)
}

func flightDetailsMissing(action string) string {
	return fmt.Sprintf(
		"Flight details are not yet configured. Ask %s to fill flight details before %s.",
		entity.AssistantFlightOptions.Name(),
		action,
	)
}
