package services

import (
	portsrepo "github.com/longbinlai/maybe/internal/core/ports/repositories"
	portssvc "github.com/longbinlai/maybe/internal/core/ports/services"
)

// ServicesContainer wires the service layer for the application.
type ServicesContainer struct {
	Currency      portssvc.CurrencySvcFacade
	RateCache     portssvc.RateCache
	ExchangeRate  portssvc.ExchangeRateSvcFacade
	RateResolver  portssvc.RateResolverSvc
	BalanceSeries portssvc.BalanceSeriesSvc
}

// ContainerDeps holds everything the container needs from the outside.
type ContainerDeps struct {
	RateRepo     portsrepo.ExchangeRateRepositoryFacade
	BalanceRepo  portsrepo.BalanceReader
	AccountRepo  portsrepo.AccountReader
	CurrencyRepo portsrepo.CurrencyRepositoryFacade
	Provider     portssvc.RateProvider // nil when no provider is configured
	Fallbacks    *FallbackTable
}

// NewServicesContainer constructs the service graph in dependency order:
// currency registry, rate cache, exchange rate service, resolver, series
// builder.
func NewServicesContainer(deps ContainerDeps) *ServicesContainer {
	currencySvc := NewCurrencyService(deps.CurrencyRepo)
	rateCache := NewRateCache(deps.RateRepo)

	var rateOpts []ExchangeRateServiceOption
	if deps.Provider != nil {
		rateOpts = append(rateOpts, WithRateProvider(deps.Provider))
	}
	rateSvc := NewExchangeRateService(deps.RateRepo, rateCache, currencySvc, rateOpts...)

	resolver := NewRateResolver(rateSvc, deps.Fallbacks)
	seriesSvc := NewBalanceSeriesService(deps.BalanceRepo, deps.AccountRepo, deps.RateRepo, resolver, currencySvc)

	return &ServicesContainer{
		Currency:      currencySvc,
		RateCache:     rateCache,
		ExchangeRate:  rateSvc,
		RateResolver:  resolver,
		BalanceSeries: seriesSvc,
	}
}
