package trader

import (
	"arbo/logger"
)

func init() {
	logger.SetConsoleEnabled(false)
	logger.InitLogs("trader_test")
}
