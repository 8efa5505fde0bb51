package fiberhelpers

import (
	"fmt"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"

	"chartdesk/apperror"
	"chartdesk/utils/log"
)

// RequestParse : JSON body 를 T 로 파싱. 실패 시 INVALID_PARAMETERS
func RequestParse[T any](ctx *fiber.Ctx) (T, error) {
	var destination T
	if err := ctx.BodyParser(&destination); err != nil {
		typeName := reflect.TypeOf(destination).Name()
		return destination, apperror.Wrap(apperror.KindInvalidParameters, err, "cannot parse %s", typeName)
	}
	return destination, nil
}

// ListenWithGraceFullyShutdown : SIGINT/SIGTERM 을 받으면 app.Shutdown 후 반환
func ListenWithGraceFullyShutdown(app *fiber.App, port string) error {
	if !strings.ContainsAny(port, ":") {
		port = fmt.Sprintf(":%s", port)
	}

	c := make(chan os.Signal, 1)
	serverShutdown := make(chan struct{})
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer close(serverShutdown)
		<-c
		log.Info("[HTTP] gracefully shutting down...")
		_ = app.Shutdown()
	}()

	address := "0.0.0.0" + port
	log.Infof("[HTTP] starting server on %s", address)
	if err := app.Listen(address); err != nil {
		signal.Stop(c)
		return fmt.Errorf("listen on %s: %w", address, err)
	}
	<-serverShutdown
	return nil
}
