package fiberhelpers

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"chartdesk/utils/log"
)

// NewRecover : panic 을 500 으로 바꾸고 stack trace 를 로그로 남김
func NewRecover() fiber.Handler {
	return recover.New(
		recover.Config{
			StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
				log.WithFields(log.Fields{
					"method":      c.Method(),
					"path":        c.Path(),
					"stack_trace": string(debug.Stack()),
				}).Error(fmt.Sprintf("[HTTP] panic: %v", e))
			},
			EnableStackTrace: true,
		},
	)
}
