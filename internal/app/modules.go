package app

import (
	"github.com/Pietro-Ricciardi/datapizza-ai/internal/capability"
	"github.com/Pietro-Ricciardi/datapizza-ai/modules/delay"
	"github.com/Pietro-Ricciardi/datapizza-ai/modules/echo"
	"github.com/Pietro-Ricciardi/datapizza-ai/modules/httpreq"
	"github.com/Pietro-Ricciardi/datapizza-ai/modules/template"
)

// coreModules returns the built-in capability modules registered when the
// caller does not supply its own set.
func coreModules() []capability.Module {
	return []capability.Module{
		&echo.Module{},
		&template.Module{},
		httpreq.New(),
		&delay.Module{},
	}
}
