package dto

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 客户端请求类型
const (
	REQ_CREATE_ROOM          = "CreateRoom"
	REQ_JOIN_ROOM            = "JoinRoom"
	REQ_LEAVE_ROOM           = "LeaveRoom"
	REQ_PLAYER_READY         = "PlayerReady"
	REQ_SET_UNDERCOVER_COUNT = "SetUndercoverCount"
	REQ_START_GAME           = "StartGame"
	REQ_VOTE_CHANGE_WORD     = "VoteChangeWord"
	REQ_SUBMIT_SPEECH        = "SubmitSpeech"
	REQ_SUBMIT_VOTE          = "SubmitVote"
	REQ_SUBMIT_GUESS         = "SubmitUndercoverGuess"
	REQ_NEXT_ROUND           = "NextRound"
	REQ_PLAY_AGAIN           = "PlayAgain"
)

type RequestWrapper struct {
	ReqType string          `json:"request_type"`
	Data    json.RawMessage `json:"data"`
}

// TryUnwrap 在请求类型匹配时解析请求体，空请求体视为零值
func TryUnwrap[T any](wrapper RequestWrapper, reqType string) *T {
	if wrapper.ReqType != reqType {
		return nil
	}

	var req T

	if len(wrapper.Data) == 0 || string(wrapper.Data) == "null" {
		return &req
	}

	if err := json.Unmarshal(wrapper.Data, &req); err != nil {
		zap.L().Debug(
			"解析请求体失败",
			zap.String("request_type", reqType),
			zap.Error(err),
		)
		return nil
	}

	return &req
}

// 服务端推送类型。对请求的应答使用与请求相同的类型名
const (
	RESP_ERROR = "Error"

	RESP_ROOM_UPDATE                 = "RoomUpdate"
	RESP_YOUR_WORD                   = "YourWord"
	RESP_WORDS_CHANGED               = "WordsChanged"
	RESP_PHASE_CHANGE                = "PhaseChange"
	RESP_VOTE_RESULT                 = "VoteResult"
	RESP_UNDERCOVER_GUESS_RESULT     = "UndercoverGuessResult"
	RESP_GAME_RESET                  = "GameReset"
	RESP_GAME_ABORTED                = "GameAborted"
	RESP_PLAYER_DISCONNECT_COUNTDOWN = "PlayerDisconnectCountdown"
)

type ResponseWrapper struct {
	RespType string `json:"response_type"`
	Data     any    `json:"data,omitempty"`
	ErrMsg   string `json:"error_message,omitempty"`
	// 仅错误响应携带，标明是哪个请求失败了
	ReqType string `json:"request_type,omitempty"`
}

func WrapResponse(respType string, data any) ResponseWrapper {
	return ResponseWrapper{
		RespType: respType,
		Data:     data,
	}
}

func WrapErrResponse(reqType, errMsg string) ResponseWrapper {
	return ResponseWrapper{
		RespType: RESP_ERROR,
		ErrMsg:   errMsg,
		ReqType:  reqType,
	}
}
