package repository

import (
	bookingRepo "homeease/database/repository/booking"
	catalogRepo "homeease/database/repository/catalog"
	providerRepo "homeease/database/repository/provider"
	userRepo "homeease/database/repository/user"
)

// Re-export the repository interfaces so services depend on one package.
type (
	BookingRepository  = bookingRepo.BookingRepository
	BookingListFilter  = bookingRepo.ListFilter
	ProviderRepository = providerRepo.ProviderRepository
	UserRepository     = userRepo.UserRepository
	ServiceRepository  = catalogRepo.ServiceRepository
)

// Set bundles every repository the services need.
type Set struct {
	Bookings  BookingRepository
	Providers ProviderRepository
	Users     UserRepository
	Services  ServiceRepository
}
