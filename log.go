package tscnscene

import (
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("tscnscene")
