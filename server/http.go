package server

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"runtime/debug"

	"github.com/baetyl/baetyl-go/v2/errors"
	"github.com/baetyl/baetyl-go/v2/http"
	"github.com/baetyl/baetyl-go/v2/log"
	routing "github.com/qiangxue/fasthttp-routing"
	"github.com/valyala/fasthttp"

	"github.com/baetyl/baetyl-geoportal/v2/resolver"
)

var errCatalogNotFound = errors.New("catalog not configured")

type HandlerFunc func(ctx *routing.Context) (interface{}, error)

func Wrapper(handler HandlerFunc) func(ctx *routing.Context) error {
	return func(ctx *routing.Context) error {
		defer func() {
			if r := recover(); r != nil {
				err, ok := r.(error)
				if !ok {
					err = errors.Trace(fmt.Errorf("unknown error: %v", r))
				}
				log.L().Info("handle a panic", log.Code(err), log.Error(err), log.Any("panic", string(debug.Stack())))
				http.RespondMsg(ctx, fasthttp.StatusInternalServerError, "UnknownError", err.Error())
			}
		}()
		res, err := handler(ctx)
		if err != nil {
			log.L().Error("failed to handle request", log.Any("path", string(ctx.Path())), log.Error(err))
			code, errCode := statusOf(err)
			http.RespondMsg(ctx, code, errCode, err.Error())
			return nil
		}
		log.L().Debug("process success", log.Any("response", res))
		http.Respond(ctx, fasthttp.StatusOK, toJSON(res))
		return nil
	}
}

func statusOf(err error) (int, string) {
	switch {
	case goerrors.Is(err, resolver.ErrUnknownService):
		return fasthttp.StatusNotFound, "UnknownService"
	case goerrors.Is(err, resolver.ErrInvalidKeyInput):
		return fasthttp.StatusBadRequest, "InvalidKeyInput"
	case goerrors.Is(err, errCatalogNotFound):
		return fasthttp.StatusNotFound, "CatalogNotFound"
	default:
		return fasthttp.StatusInternalServerError, "UnknownError"
	}
}

func toJSON(obj interface{}) []byte {
	data, _ := json.Marshal(obj)
	return data
}
