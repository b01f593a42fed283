package game

import (
	"strings"

	"go.uber.org/zap"
)

// ChangeWordTally 换词投票的进度
type ChangeWordTally struct {
	Passed  bool `json:"passed"`
	Total   int  `json:"total"`
	Needed  int  `json:"needed"`
	Current int  `json:"current"`
}

// SpeakingTurn 发言阶段开始时的首位发言者
type SpeakingTurn struct {
	Round     int    `json:"round"`
	SpeakerID string `json:"speakerId"`
	Index     int    `json:"index"`
}

// SpeechOutcome 提交发言后的结果，AllDone 时进入投票阶段
type SpeechOutcome struct {
	AllDone       bool   `json:"allDone"`
	NextSpeakerID string `json:"nextSpeakerId,omitempty"`
	NextIndex     int    `json:"nextIndex"`
}

// Verdict 本轮计票后的胜负判定，GuessRequired 时进入卧底猜词阶段
type Verdict struct {
	Winner         Role   `json:"winner,omitempty"`
	GuessRequired  bool   `json:"guessRequired,omitempty"`
	GuesserID      string `json:"guesserId,omitempty"`
	CivilianWord   string `json:"civilianWord,omitempty"`
	UndercoverWord string `json:"undercoverWord,omitempty"`
}

// VoteOutcome 提交投票后的结果，Waiting 表示还有人没投
type VoteOutcome struct {
	Waiting  bool        `json:"waiting,omitempty"`
	Result   *VoteResult `json:"voteResult,omitempty"`
	Votes    []VoteEdge  `json:"votes,omitempty"`
	GameOver *Verdict    `json:"gameOver,omitempty"`
}

// GuessOutcome 卧底猜词（或超时）后的最终结果
type GuessOutcome struct {
	GuessResult
	Winner         Role   `json:"winner"`
	CivilianWord   string `json:"civilianWord"`
	UndercoverWord string `json:"undercoverWord"`
}

func (r *Room) changeWordNeeded() int {
	return len(r.players)/2 + 1
}

// VoteChangeWord 准备阶段投票换词，同一玩家重复投票只计一次。
// 超过半数通过后重新抽词，角色不变，每局只能换一次。
func (r *Room) VoteChangeWord(id string) (ChangeWordTally, error) {
	if r.wordChanged {
		return ChangeWordTally{}, ErrAlreadyChanged
	}

	if r.phase != PHASE_PLAYING {
		return ChangeWordTally{}, ErrWrongPhase
	}

	p := r.findPlayer(id)
	if p == nil || !p.Alive {
		return ChangeWordTally{}, ErrInvalidPlayer
	}

	r.changeWordVotes[id] = struct{}{}

	tally := ChangeWordTally{
		Total:   len(r.players),
		Needed:  r.changeWordNeeded(),
		Current: len(r.changeWordVotes),
	}

	if tally.Current >= tally.Needed {
		r.changeWords()
		tally.Passed = true
	}

	return tally, nil
}

func (r *Room) changeWords() {
	pair := r.words.RandomPair()
	r.civilianWord = pair.Civilian
	r.undercoverWord = pair.Undercover

	for _, p := range r.players {
		if p.Role == ROLE_UNDERCOVER {
			p.Word = r.undercoverWord
		} else {
			p.Word = r.civilianWord
		}
		p.Speech = nil
	}

	r.changeWordVotes = make(map[string]struct{})
	r.wordChanged = true

	// 回到准备阶段让玩家重新看词，准备计时由外部重新开始
	r.phase = PHASE_PLAYING
	r.round = 0
	r.speakingOrder = nil
	r.speakingIndex = 0
}

// StartSpeaking 开始新一轮发言：归档上一轮的发言，重新随机发言顺序
func (r *Room) StartSpeaking() (SpeakingTurn, error) {
	if r.phase != PHASE_PLAYING && r.phase != PHASE_RESULT {
		return SpeakingTurn{}, ErrWrongPhase
	}

	if r.round > 0 {
		r.archiveSpeeches()
	}

	r.round++

	for _, p := range r.players {
		p.Speech = nil
		p.Vote = ""
	}

	alive := r.alivePlayers()
	order := make([]string, 0, len(alive))
	for _, p := range alive {
		order = append(order, p.ID)
	}

	r.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	r.speakingOrder = order
	r.speakingIndex = 0
	r.phase = PHASE_SPEAKING

	return SpeakingTurn{
		Round:     r.round,
		SpeakerID: r.currentSpeakerID(),
		Index:     0,
	}, nil
}

func (r *Room) currentSpeakerID() string {
	if r.phase != PHASE_SPEAKING || r.speakingIndex >= len(r.speakingOrder) {
		return ""
	}

	return r.speakingOrder[r.speakingIndex]
}

func (r *Room) archiveSpeeches() {
	records := make([]SpeechRecord, 0, len(r.speakingOrder))

	for _, id := range r.speakingOrder {
		p := r.findPlayer(id)
		if p == nil || p.Speech == nil {
			continue
		}

		records = append(records, SpeechRecord{
			PlayerID: p.ID,
			Name:     p.Name,
			Speech:   *p.Speech,
		})
	}

	if len(records) == 0 {
		return
	}

	r.speechHistory = append(r.speechHistory, RoundSpeeches{
		Round:    r.round,
		Speeches: records,
	})
}

// SubmitSpeech 记录当前发言者的发言并推进发言顺序，内容原样保存
func (r *Room) SubmitSpeech(id string, speech Speech) (SpeechOutcome, error) {
	if r.phase != PHASE_SPEAKING {
		return SpeechOutcome{}, ErrWrongPhase
	}

	p := r.findPlayer(id)
	if p == nil || !p.Alive {
		return SpeechOutcome{}, ErrInvalidPlayer
	}

	if id != r.currentSpeakerID() {
		return SpeechOutcome{}, ErrNotYourTurn
	}

	p.Speech = &speech
	r.speakingIndex++

	if r.speakingIndex >= len(r.speakingOrder) {
		r.phase = PHASE_VOTING
		return SpeechOutcome{AllDone: true, NextIndex: -1}, nil
	}

	return SpeechOutcome{
		NextSpeakerID: r.speakingOrder[r.speakingIndex],
		NextIndex:     r.speakingIndex,
	}, nil
}

// SubmitVote 记录投票，投票结算前允许改票。所有存活玩家投完后立即计票。
func (r *Room) SubmitVote(id, targetID string) (VoteOutcome, error) {
	if r.phase != PHASE_VOTING {
		return VoteOutcome{}, ErrWrongPhase
	}

	voter := r.findPlayer(id)
	if voter == nil || !voter.Alive {
		return VoteOutcome{}, ErrInvalidPlayer
	}

	if id == targetID {
		return VoteOutcome{}, ErrSelfVote
	}

	target := r.findPlayer(targetID)
	if target == nil || !target.Alive {
		return VoteOutcome{}, ErrInvalidTarget
	}

	voter.Vote = targetID

	for _, p := range r.players {
		if p.Alive && p.Vote == "" {
			return VoteOutcome{Waiting: true}, nil
		}
	}

	return r.resolveVotes(), nil
}

// resolveVotes 计票：唯一最高票者出局，最高票并列则无人出局
func (r *Room) resolveVotes() VoteOutcome {
	voteCount := make(map[string]int)
	votes := make([]VoteEdge, 0, len(r.players))

	for _, p := range r.players {
		if p.Alive && p.Vote != "" {
			voteCount[p.Vote]++
			votes = append(votes, VoteEdge{From: p.ID, To: p.Vote})
		}
	}

	maxVotes := 0
	candidates := make([]string, 0, len(voteCount))

	for _, p := range r.players {
		count := voteCount[p.ID]
		if count == 0 {
			continue
		}

		if count > maxVotes {
			maxVotes = count
			candidates = append(candidates[:0], p.ID)
		} else if count == maxVotes {
			candidates = append(candidates, p.ID)
		}
	}

	r.phase = PHASE_RESULT

	var eliminated *Player

	if len(candidates) == 1 {
		eliminated = r.findPlayer(candidates[0])
		eliminated.Alive = false
	}

	result := &VoteResult{
		VoteCount: voteCount,
		Tie:       len(candidates) > 1,
	}

	if eliminated != nil {
		result.Eliminated = &EliminatedPlayer{
			ID:   eliminated.ID,
			Name: eliminated.Name,
			Role: eliminated.Role,
		}
	}

	r.voteResult = result

	return VoteOutcome{
		Result:   result,
		Votes:    votes,
		GameOver: r.checkWin(eliminated),
	}
}

// checkWin 判定胜负。卧底全部出局时，如果最后一名卧底正是本轮被投出的，
// 进入卧底猜词阶段；卧底人数不少于平民时卧底获胜。
func (r *Room) checkWin(eliminated *Player) *Verdict {
	aliveUndercover, aliveCivilian := 0, 0

	for _, p := range r.players {
		if !p.Alive {
			continue
		}

		switch p.Role {
		case ROLE_UNDERCOVER:
			aliveUndercover++
		case ROLE_CIVILIAN:
			aliveCivilian++
		}
	}

	if aliveUndercover == 0 {
		if eliminated != nil && eliminated.Role == ROLE_UNDERCOVER {
			r.phase = PHASE_UNDERCOVER_GUESS
			r.guess = &guessState{guesserID: eliminated.ID}

			return &Verdict{
				GuessRequired: true,
				GuesserID:     eliminated.ID,
			}
		}

		// 正常流程下不会走到这里：卧底只会因本轮投票出局
		zap.L().Warn(
			"卧底已全部出局但本轮出局者不是卧底，直接判平民胜",
			zap.String("room_id", r.id),
		)

		return r.finish(ROLE_CIVILIAN)
	}

	if aliveUndercover >= aliveCivilian {
		return r.finish(ROLE_UNDERCOVER)
	}

	return nil
}

func (r *Room) finish(winner Role) *Verdict {
	r.winner = winner
	r.phase = PHASE_GAME_OVER

	return &Verdict{
		Winner:         winner,
		CivilianWord:   r.civilianWord,
		UndercoverWord: r.undercoverWord,
	}
}

// SubmitUndercoverGuess 最后一名卧底猜平民的词，忽略大小写和首尾空白。
// 猜中则卧底翻盘获胜，否则平民获胜。
func (r *Room) SubmitUndercoverGuess(id, guess string) (GuessOutcome, error) {
	if r.phase != PHASE_UNDERCOVER_GUESS || r.guess == nil {
		return GuessOutcome{}, ErrWrongPhase
	}

	if id != r.guess.guesserID {
		return GuessOutcome{}, ErrNotAuthorized
	}

	correct := strings.EqualFold(
		strings.TrimSpace(guess),
		strings.TrimSpace(r.civilianWord),
	)

	winner := ROLE_CIVILIAN
	if correct {
		winner = ROLE_UNDERCOVER
	}

	return r.settleGuess(GuessResult{
		GuesserID: id,
		Guess:     guess,
		Correct:   correct,
	}, winner), nil
}

// TimeoutUndercoverGuess 猜词超时，平民获胜。不在猜词阶段时什么也不做，返回 nil。
func (r *Room) TimeoutUndercoverGuess() *GuessOutcome {
	if r.phase != PHASE_UNDERCOVER_GUESS || r.guess == nil {
		return nil
	}

	outcome := r.settleGuess(GuessResult{
		GuesserID: r.guess.guesserID,
		Timeout:   true,
	}, ROLE_CIVILIAN)

	return &outcome
}

func (r *Room) settleGuess(result GuessResult, winner Role) GuessOutcome {
	r.guess.result = &result
	r.finish(winner)

	return GuessOutcome{
		GuessResult:    result,
		Winner:         winner,
		CivilianWord:   r.civilianWord,
		UndercoverWord: r.undercoverWord,
	}
}
