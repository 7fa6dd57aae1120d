package specialists

import (
	"charter-concierge/internal/domain/repository"
	"charter-concierge/internal/usecase"
	"charter-concierge/pkg/logger"
)

// RegisterCrew registers the dispatch tables of the whole crew
func RegisterCrew(
	router usecase.CrewRouter,
	handOver *usecase.HandOverService,
	charter *usecase.CharterOptionsService,
	places repository.PlacesRepository,
	log logger.Logger,
) {
	contexts := newSwitchContexts(handOver, charter, log)

	router.Register(newThomas(handOver, contexts, log))
	router.Register(newFlight(handOver, contexts, charter, log))
	router.Register(newFlightOptions(handOver, contexts, log))
	router.Register(newCatering(handOver, contexts, log))
	router.Register(newTransfer(handOver, contexts, log))
	router.Register(newWaypoints(handOver, contexts, places, log))
}
