package setup

import (
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/apiclient/identity"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/apiclient/nextcloud"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/config"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/handler"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/service"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Config  *config.Config
	Handler *handler.Handler
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) *Dependencies {
	identityClient := identity.New(cfg.Public.IdentityBaseURL, cfg.UpstreamTimeout())
	nextcloudClient := nextcloud.New(
		cfg.Public.NextcloudBaseURL,
		cfg.NextcloudAdminUser(),
		cfg.NextcloudAdminPassword(),
		cfg.UpstreamTimeout(),
	)

	eligibility := service.NewEligibility(identityClient, cfg.Public.RequiredDepartment)
	provisioning := service.NewProvisioning(eligibility, nextcloudClient)

	h := handler.New(eligibility, provisioning, nextcloudClient, cfg)

	return &Dependencies{
		Config:  cfg,
		Handler: h,
	}
}
