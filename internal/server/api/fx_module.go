package api

import (
	"go.uber.org/fx"
)

var Module = fx.Module("api",
	fx.Provide(NewSystemHandlers),
	fx.Provide(NewSessionHandlers),
	fx.Provide(NewReportHandlers),
	fx.Provide(NewAdminHandlers),
)
