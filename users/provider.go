package users

import (
	"github.com/tech-arch1tect/rememberable/services/remember"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewGormDirectory),
	fx.Provide(func(d *GormDirectory) remember.Directory { return d }),
)
