package game

import "undercover-be/internal/words"

// 游戏共 7 个阶段：
// 1. 等待阶段（waiting）：玩家加入、准备，房主设置卧底人数
// 2. 准备阶段（playing）：角色和词语已分配，玩家看词，可以投票换词
// 3. 发言阶段（speaking）：存活玩家按随机顺序轮流描述自己的词
// 4. 投票阶段（voting）：存活玩家投票，全部投完后立即计票
// 5. 结果阶段（result）：公布本轮淘汰结果，房主推进下一轮
// 6. 卧底猜词阶段（undercover_guess）：最后一名卧底被淘汰后的翻盘机会
// 7. 结束阶段（game_over）：公布胜负和双方词语，房主可以再来一局
type Phase string

const (
	PHASE_WAITING          Phase = "waiting"
	PHASE_PLAYING          Phase = "playing"
	PHASE_SPEAKING         Phase = "speaking"
	PHASE_VOTING           Phase = "voting"
	PHASE_RESULT           Phase = "result"
	PHASE_UNDERCOVER_GUESS Phase = "undercover_guess"
	PHASE_GAME_OVER        Phase = "game_over"
)

// InGame 表示是否处于一局游戏之中（等待和结束阶段不算）
func (p Phase) InGame() bool {
	switch p {
	case PHASE_PLAYING, PHASE_SPEAKING, PHASE_VOTING, PHASE_RESULT, PHASE_UNDERCOVER_GUESS:
		return true
	default:
		return false
	}
}

// 玩家身份，未开局时为空
type Role string

const (
	ROLE_UNSET      Role = ""
	ROLE_CIVILIAN   Role = "civilian"
	ROLE_UNDERCOVER Role = "undercover"
)

const (
	MIN_PLAYERS = 4
	MAX_PLAYERS = 12
)

const (
	SPEECH_TEXT  = "text"
	SPEECH_VOICE = "voice"
)

// Speech 是一次发言，Content 为文字内容或语音地址，不做校验
type Speech struct {
	Kind    string `json:"type"`
	Content string `json:"content"`
}

type Player struct {
	ID     string
	Name   string
	Avatar string

	Ready  bool
	Alive  bool
	Online bool

	Role Role
	Word string

	// 本轮投票目标，未投票为空
	Vote   string
	Speech *Speech
}

func (p *Player) resetForWaiting(isHost bool) {
	p.Ready = isHost
	p.Alive = true
	p.Role = ROLE_UNSET
	p.Word = ""
	p.Vote = ""
	p.Speech = nil
}

// WordPairProvider 提供一组词，始终成功并且两个词不同
type WordPairProvider interface {
	RandomPair() words.Pair
}

// SpeechRecord 归档后的单条发言
type SpeechRecord struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Speech   Speech `json:"speech"`
}

// RoundSpeeches 一轮结束后归档的所有发言
type RoundSpeeches struct {
	Round    int            `json:"round"`
	Speeches []SpeechRecord `json:"speeches"`
}

type EliminatedPlayer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// VoteResult 一轮投票的结果，平票时 Eliminated 为空
type VoteResult struct {
	VoteCount  map[string]int    `json:"voteCount"`
	Eliminated *EliminatedPlayer `json:"eliminated"`
	Tie        bool              `json:"tie"`
}

type VoteEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// GuessResult 卧底猜词的结果，超时时 Guess 为空且 Timeout 为 true
type GuessResult struct {
	GuesserID string `json:"guesserId"`
	Guess     string `json:"guess"`
	Correct   bool   `json:"correct"`
	Timeout   bool   `json:"timeout"`
}
