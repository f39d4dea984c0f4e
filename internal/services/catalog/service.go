// Package catalog manages clients and the services the agency sells them:
// domains, hosting packages and SSL certificates.
package catalog

import (
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"

	"github.com/sirupsen/logrus"
)

type CatalogService struct {
	clients *repository.ClientRepository
	domains *repository.DomainRepository
	hosting *repository.HostingServiceRepository
	ssl     *repository.SslCertificateRepository
	log     *logrus.Logger
	now     services.Clock
}

func NewCatalogService(
	clients *repository.ClientRepository,
	domains *repository.DomainRepository,
	hosting *repository.HostingServiceRepository,
	ssl *repository.SslCertificateRepository,
	log *logrus.Logger,
	clock services.Clock,
) *CatalogService {
	if clock == nil {
		clock = services.SystemClock
	}
	return &CatalogService{
		clients: clients,
		domains: domains,
		hosting: hosting,
		ssl:     ssl,
		log:     log,
		now:     clock,
	}
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func notFound(err error, resource string) error {
	if repository.IsNotFound(err) {
		return services.NotFound(resource)
	}
	return err
}
