package http

import (
	"errors"
	nethttp "net/http"

	"undercover-be/internal/service/voice"
	"undercover-be/internal/state"

	"github.com/kataras/iris/v12"
	"go.uber.org/zap"
)

const VOICE_FORM_FIELD = "voice"

func UploadVoice(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		file, header, err := ctx.FormFile(VOICE_FORM_FIELD)
		if err != nil {
			ctx.StatusCode(iris.StatusBadRequest)
			ctx.JSON(iris.Map{
				"error": "上传失败",
			})
			return
		}

		defer file.Close()

		url, err := appState.Voice.Save(file, header.Header.Get("Content-Type"), header.Filename)
		if err != nil {
			status := iris.StatusBadRequest
			if errors.Is(err, voice.ErrTooLarge) {
				status = iris.StatusRequestEntityTooLarge
			} else if !errors.Is(err, voice.ErrUnsupportedType) && !errors.Is(err, voice.ErrEmpty) {
				zap.L().Error("保存语音失败", zap.Error(err))
				status = iris.StatusInternalServerError
			}

			ctx.StatusCode(status)
			ctx.JSON(iris.Map{
				"error": err.Error(),
			})
			return
		}

		ctx.JSON(iris.Map{
			"url": url,
		})
	}
}

func GetVoice(appState *state.AppState) iris.Handler {
	return func(ctx iris.Context) {
		name := ctx.Params().Get("file")

		f, err := appState.Voice.Open(name)
		if err != nil {
			if !errors.Is(err, voice.ErrNotFound) {
				zap.L().Error("读取语音失败", zap.String("file", name), zap.Error(err))
			}

			ctx.StatusCode(iris.StatusNotFound)
			ctx.JSON(iris.Map{
				"error": voice.ErrNotFound.Error(),
			})
			return
		}

		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			ctx.StatusCode(iris.StatusInternalServerError)
			return
		}

		nethttp.ServeContent(ctx.ResponseWriter(), ctx.Request(), name, info.ModTime(), f)
	}
}
