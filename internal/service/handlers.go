package service

import (
	"strings"

	"undercover-be/internal/service/dto"
	"undercover-be/internal/service/game"

	"go.uber.org/zap"
)

func (c *Coordinator) handleRequest(connID string, req dto.RequestWrapper) {
	conn, ok := c.conns[connID]
	if !ok {
		zap.L().Warn(
			"收到未注册连接的请求",
			zap.String("conn_id", connID),
			zap.String("request_type", req.ReqType),
		)
		return
	}

	var (
		data any
		err  error
	)

	switch req.ReqType {
	case dto.REQ_CREATE_ROOM:
		data, err = c.handleCreateRoom(conn, req)
	case dto.REQ_JOIN_ROOM:
		data, err = c.handleJoinRoom(conn, req)
	default:
		data, err = c.handleRoomAction(conn, req)
	}

	if err != nil {
		// 被拒绝的操作是正常的玩家行为，不算故障
		zap.L().Debug(
			"请求被拒绝",
			zap.String("conn_id", connID),
			zap.String("room_id", conn.roomID),
			zap.String("player_id", conn.playerID),
			zap.String("request_type", req.ReqType),
			zap.Error(err),
		)

		c.send(conn, dto.WrapErrResponse(req.ReqType, err.Error()))
		return
	}

	c.send(conn, dto.WrapResponse(req.ReqType, data))
}

func (c *Coordinator) handleCreateRoom(conn *connection, req dto.RequestWrapper) (any, error) {
	body := dto.TryUnwrap[dto.CreateRoomRequest](req, dto.REQ_CREATE_ROOM)
	if body == nil {
		return nil, ErrBadRequest
	}

	if conn.bound() {
		return nil, ErrAlreadyInRoom
	}

	if strings.TrimSpace(body.PlayerID) == "" || strings.TrimSpace(body.PlayerName) == "" {
		return nil, game.ErrInvalidPlayer
	}

	room, err := c.registry.Create(body.PlayerID, body.PlayerName, body.PlayerAvatar)
	if err != nil {
		return nil, err
	}

	conn.roomID = room.ID()
	conn.playerID = body.PlayerID

	c.broadcastState(room)

	return dto.JoinRoomResponse{RoomID: room.ID(), PlayerID: body.PlayerID}, nil
}

// handleJoinRoom 同一个玩家 ID 再次加入视为重连
func (c *Coordinator) handleJoinRoom(conn *connection, req dto.RequestWrapper) (any, error) {
	body := dto.TryUnwrap[dto.JoinRoomRequest](req, dto.REQ_JOIN_ROOM)
	if body == nil {
		return nil, ErrBadRequest
	}

	if conn.bound() && (conn.roomID != body.RoomID || conn.playerID != body.PlayerID) {
		return nil, ErrAlreadyInRoom
	}

	if strings.TrimSpace(body.PlayerID) == "" {
		return nil, game.ErrInvalidPlayer
	}

	room := c.registry.Get(body.RoomID)
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if _, exists := room.Player(body.PlayerID); exists {
		return c.reconnect(conn, room, body.PlayerID), nil
	}

	if strings.TrimSpace(body.PlayerName) == "" {
		return nil, game.ErrInvalidPlayer
	}

	if _, err := room.AddPlayer(body.PlayerID, body.PlayerName, body.PlayerAvatar); err != nil {
		return nil, err
	}

	conn.roomID = room.ID()
	conn.playerID = body.PlayerID

	zap.L().Info(
		"玩家加入房间",
		zap.String("room_id", room.ID()),
		zap.String("player_id", body.PlayerID),
		zap.String("player_name", body.PlayerName),
	)

	c.broadcastState(room)

	return dto.JoinRoomResponse{RoomID: room.ID(), PlayerID: body.PlayerID}, nil
}

func (c *Coordinator) handleRoomAction(conn *connection, req dto.RequestWrapper) (any, error) {
	if !conn.bound() {
		return nil, ErrNotInRoom
	}

	room := c.registry.Get(conn.roomID)
	if room == nil {
		conn.roomID = ""
		conn.playerID = ""
		return nil, ErrNotInRoom
	}

	playerID := conn.playerID

	switch req.ReqType {
	case dto.REQ_LEAVE_ROOM:
		c.leave(room, playerID)
		return nil, nil

	case dto.REQ_PLAYER_READY:
		body := dto.TryUnwrap[dto.PlayerReadyRequest](req, req.ReqType)
		if body == nil {
			return nil, ErrBadRequest
		}

		if err := room.SetReady(playerID, body.Ready); err != nil {
			return nil, err
		}

		c.broadcastState(room)
		return nil, nil

	case dto.REQ_SET_UNDERCOVER_COUNT:
		body := dto.TryUnwrap[dto.SetUndercoverCountRequest](req, req.ReqType)
		if body == nil {
			return nil, ErrBadRequest
		}

		if room.HostID() != playerID {
			return nil, game.ErrNotAuthorized
		}

		count, err := room.SetUndercoverCount(body.Count)
		if err != nil {
			return nil, err
		}

		c.broadcastState(room)
		return dto.SetUndercoverCountResponse{Count: count}, nil

	case dto.REQ_START_GAME:
		return nil, c.startGame(room, playerID)

	case dto.REQ_VOTE_CHANGE_WORD:
		return c.voteChangeWord(room, playerID)

	case dto.REQ_SUBMIT_SPEECH:
		body := dto.TryUnwrap[dto.SubmitSpeechRequest](req, req.ReqType)
		if body == nil {
			return nil, ErrBadRequest
		}

		return c.submitSpeech(room, playerID, body.Speech)

	case dto.REQ_SUBMIT_VOTE:
		body := dto.TryUnwrap[dto.SubmitVoteRequest](req, req.ReqType)
		if body == nil {
			return nil, ErrBadRequest
		}

		return c.submitVote(room, playerID, body.TargetID)

	case dto.REQ_SUBMIT_GUESS:
		body := dto.TryUnwrap[dto.SubmitGuessRequest](req, req.ReqType)
		if body == nil {
			return nil, ErrBadRequest
		}

		return c.submitGuess(room, playerID, body.Guess)

	case dto.REQ_NEXT_ROUND:
		if room.HostID() != playerID {
			return nil, game.ErrNotAuthorized
		}

		if room.Phase() != game.PHASE_RESULT {
			return nil, game.ErrWrongPhase
		}

		return c.startSpeaking(room)

	case dto.REQ_PLAY_AGAIN:
		if room.HostID() != playerID {
			return nil, game.ErrNotAuthorized
		}

		if err := room.ResetForNewGame(); err != nil {
			return nil, err
		}

		c.timers.Cancel(room.ID(), TIMER_GUESS)
		c.timers.Cancel(room.ID(), TIMER_PREP)

		c.broadcastState(room)
		c.broadcast(room.ID(), dto.WrapResponse(dto.RESP_GAME_RESET, nil))
		return nil, nil

	default:
		return nil, ErrUnknownAction
	}
}

func (c *Coordinator) startGame(room *game.Room, playerID string) error {
	if room.HostID() != playerID {
		return game.ErrNotAuthorized
	}

	if room.Phase() != game.PHASE_WAITING {
		return game.ErrWrongPhase
	}

	if room.PlayerCount() < game.MIN_PLAYERS {
		return game.ErrNotEnoughPlayers
	}

	if !room.AllReady() {
		return game.ErrPlayersNotReady
	}

	if err := room.StartGame(); err != nil {
		return err
	}

	zap.L().Info(
		"游戏开始",
		zap.String("room_id", room.ID()),
		zap.Int("players", room.PlayerCount()),
		zap.Int("undercover_count", room.UndercoverCount()),
	)

	c.sendSecrets(room)
	c.broadcastState(room)
	c.schedulePrep(room.ID())

	return nil
}

func (c *Coordinator) voteChangeWord(room *game.Room, playerID string) (any, error) {
	tally, err := room.VoteChangeWord(playerID)
	if err != nil {
		return nil, err
	}

	if tally.Passed {
		zap.L().Info("换词投票通过", zap.String("room_id", room.ID()))

		c.sendSecrets(room)
		c.broadcast(room.ID(), dto.WrapResponse(dto.RESP_WORDS_CHANGED, nil))

		// 重新给玩家完整的看词时间
		c.schedulePrep(room.ID())
	}

	c.broadcastState(room)

	return tally, nil
}

func (c *Coordinator) schedulePrep(roomID string) {
	c.timers.Schedule(roomID, TIMER_PREP, c.cfg.PrepWindow, func() {
		room := c.registry.Get(roomID)
		if room == nil || room.Phase() != game.PHASE_PLAYING {
			return
		}

		if _, err := c.startSpeaking(room); err != nil {
			zap.L().Warn(
				"看词时间结束后进入发言阶段失败",
				zap.String("room_id", roomID),
				zap.Error(err),
			)
		}
	})
}

func (c *Coordinator) startSpeaking(room *game.Room) (any, error) {
	turn, err := room.StartSpeaking()
	if err != nil {
		return nil, err
	}

	c.broadcastState(room)
	c.broadcast(room.ID(), dto.WrapResponse(
		dto.RESP_PHASE_CHANGE,
		dto.PhaseChangeEvent{Phase: game.PHASE_SPEAKING},
	))

	return turn, nil
}

func (c *Coordinator) submitSpeech(room *game.Room, playerID string, speech game.Speech) (any, error) {
	if speech.Kind == "" {
		speech.Kind = game.SPEECH_TEXT
	}

	outcome, err := room.SubmitSpeech(playerID, speech)
	if err != nil {
		return nil, err
	}

	c.broadcastState(room)

	if outcome.AllDone {
		c.broadcast(room.ID(), dto.WrapResponse(
			dto.RESP_PHASE_CHANGE,
			dto.PhaseChangeEvent{Phase: game.PHASE_VOTING},
		))
	}

	return outcome, nil
}

func (c *Coordinator) submitVote(room *game.Room, playerID, targetID string) (any, error) {
	outcome, err := room.SubmitVote(playerID, targetID)
	if err != nil {
		return nil, err
	}

	if outcome.Waiting {
		c.broadcastState(room)
		return outcome, nil
	}

	c.broadcast(room.ID(), dto.WrapResponse(dto.RESP_VOTE_RESULT, outcome))
	c.broadcastState(room)

	if outcome.GameOver != nil && outcome.GameOver.GuessRequired {
		roomID := room.ID()

		c.timers.Schedule(roomID, TIMER_GUESS, c.cfg.GuessWindow, func() {
			room := c.registry.Get(roomID)
			if room == nil {
				return
			}

			result := room.TimeoutUndercoverGuess()
			if result == nil {
				return
			}

			zap.L().Info("卧底猜词超时", zap.String("room_id", roomID))

			c.broadcast(roomID, dto.WrapResponse(dto.RESP_UNDERCOVER_GUESS_RESULT, *result))
			c.broadcastState(room)
		})
	}

	return outcome, nil
}

func (c *Coordinator) submitGuess(room *game.Room, playerID, guess string) (any, error) {
	outcome, err := room.SubmitUndercoverGuess(playerID, guess)
	if err != nil {
		return nil, err
	}

	c.timers.Cancel(room.ID(), TIMER_GUESS)

	c.broadcast(room.ID(), dto.WrapResponse(dto.RESP_UNDERCOVER_GUESS_RESULT, outcome))
	c.broadcastState(room)

	return outcome, nil
}
