package game

import "slices"

// PlayerView 是广播给所有人的玩家信息。
// 存活玩家的身份只有在游戏结束后才会公开，词语永远不会出现在这里。
type PlayerView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Avatar   string  `json:"avatar,omitempty"`
	Ready    bool    `json:"ready"`
	Alive    bool    `json:"alive"`
	Online   bool    `json:"online"`
	Speech   *Speech `json:"speech"`
	HasVoted bool    `json:"hasVoted"`
	Role     Role    `json:"role,omitempty"`
}

// StageView 是各阶段独有的数据，具体类型由阶段决定
type StageView interface {
	Phase() Phase
}

type WaitingStage struct {
	AllReady bool `json:"allReady"`
}

type PlayingStage struct {
	ChangeWordVotes  int      `json:"changeWordVotes"`
	ChangeWordNeeded int      `json:"changeWordNeeded"`
	ChangeWordVoters []string `json:"changeWordVoters"`
}

type SpeakingStage struct {
	SpeakingOrder    []string `json:"speakingOrder"`
	CurrentIndex     int      `json:"currentSpeakerIndex"`
	CurrentSpeakerID string   `json:"currentSpeakerId"`
}

type VotingStage struct {
	Voted int `json:"voted"`
	Alive int `json:"alive"`
}

type ResultStage struct {
	VoteResult VoteResult `json:"voteResult"`
}

type GuessStage struct {
	GuesserID  string     `json:"guessingUndercoverId"`
	VoteResult VoteResult `json:"voteResult"`
}

type GameOverStage struct {
	Winner         Role         `json:"winner"`
	CivilianWord   string       `json:"civilianWord"`
	UndercoverWord string       `json:"undercoverWord"`
	VoteResult     *VoteResult  `json:"voteResult"`
	GuessResult    *GuessResult `json:"guessResult"`
}

func (WaitingStage) Phase() Phase  { return PHASE_WAITING }
func (PlayingStage) Phase() Phase  { return PHASE_PLAYING }
func (SpeakingStage) Phase() Phase { return PHASE_SPEAKING }
func (VotingStage) Phase() Phase   { return PHASE_VOTING }
func (ResultStage) Phase() Phase   { return PHASE_RESULT }
func (GuessStage) Phase() Phase    { return PHASE_UNDERCOVER_GUESS }
func (GameOverStage) Phase() Phase { return PHASE_GAME_OVER }

// RoomView 是房间的公开快照，每次状态变化后广播给房间内所有人
type RoomView struct {
	ID                 string          `json:"id"`
	HostID             string          `json:"hostId"`
	Phase              Phase           `json:"phase"`
	Round              int             `json:"round"`
	UndercoverCount    int             `json:"undercoverCount"`
	MaxUndercoverCount int             `json:"maxUndercoverCount"`
	WordChanged        bool            `json:"wordChanged"`
	Players            []PlayerView    `json:"players"`
	SpeechHistory      []RoundSpeeches `json:"speechHistory"`
	Stage              StageView       `json:"stage"`
}

// PlayerSecret 只单播给玩家本人
type PlayerSecret struct {
	Role Role   `json:"role"`
	Word string `json:"word"`
}

// Summary 用于大厅的房间列表
type Summary struct {
	ID          string `json:"id"`
	HostName    string `json:"hostName"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	Phase       Phase  `json:"phase"`
}

func (r *Room) PublicView() RoomView {
	players := make([]PlayerView, 0, len(r.players))

	for _, p := range r.players {
		pv := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Avatar:   p.Avatar,
			Ready:    p.Ready,
			Alive:    p.Alive,
			Online:   p.Online,
			Speech:   p.Speech,
			HasVoted: p.Vote != "",
		}

		if r.phase == PHASE_GAME_OVER || !p.Alive {
			pv.Role = p.Role
		}

		players = append(players, pv)
	}

	return RoomView{
		ID:                 r.id,
		HostID:             r.hostID,
		Phase:              r.phase,
		Round:              r.round,
		UndercoverCount:    r.undercoverCount,
		MaxUndercoverCount: r.MaxUndercoverCount(),
		WordChanged:        r.wordChanged,
		Players:            players,
		SpeechHistory:      slices.Clone(r.speechHistory),
		Stage:              r.stageView(),
	}
}

func (r *Room) stageView() StageView {
	switch r.phase {
	case PHASE_PLAYING:
		voters := make([]string, 0, len(r.changeWordVotes))
		for _, p := range r.players {
			if _, ok := r.changeWordVotes[p.ID]; ok {
				voters = append(voters, p.ID)
			}
		}

		return PlayingStage{
			ChangeWordVotes:  len(voters),
			ChangeWordNeeded: r.changeWordNeeded(),
			ChangeWordVoters: voters,
		}

	case PHASE_SPEAKING:
		return SpeakingStage{
			SpeakingOrder:    slices.Clone(r.speakingOrder),
			CurrentIndex:     r.speakingIndex,
			CurrentSpeakerID: r.currentSpeakerID(),
		}

	case PHASE_VOTING:
		stage := VotingStage{}
		for _, p := range r.players {
			if !p.Alive {
				continue
			}
			stage.Alive++
			if p.Vote != "" {
				stage.Voted++
			}
		}

		return stage

	case PHASE_RESULT:
		return ResultStage{VoteResult: r.copyVoteResult()}

	case PHASE_UNDERCOVER_GUESS:
		return GuessStage{
			GuesserID:  r.guess.guesserID,
			VoteResult: r.copyVoteResult(),
		}

	case PHASE_GAME_OVER:
		stage := GameOverStage{
			Winner:         r.winner,
			CivilianWord:   r.civilianWord,
			UndercoverWord: r.undercoverWord,
		}

		if r.voteResult != nil {
			vr := r.copyVoteResult()
			stage.VoteResult = &vr
		}

		if r.guess != nil && r.guess.result != nil {
			gr := *r.guess.result
			stage.GuessResult = &gr
		}

		return stage

	default:
		return WaitingStage{AllReady: r.AllReady()}
	}
}

func (r *Room) copyVoteResult() VoteResult {
	if r.voteResult == nil {
		return VoteResult{VoteCount: map[string]int{}}
	}

	vr := *r.voteResult

	vr.VoteCount = make(map[string]int, len(r.voteResult.VoteCount))
	for k, v := range r.voteResult.VoteCount {
		vr.VoteCount[k] = v
	}

	if r.voteResult.Eliminated != nil {
		e := *r.voteResult.Eliminated
		vr.Eliminated = &e
	}

	return vr
}

// SecretFor 返回玩家自己的身份和词语，等待阶段没有秘密可发
func (r *Room) SecretFor(id string) (PlayerSecret, bool) {
	p := r.findPlayer(id)
	if p == nil || r.phase == PHASE_WAITING || p.Role == ROLE_UNSET {
		return PlayerSecret{}, false
	}

	return PlayerSecret{Role: p.Role, Word: p.Word}, true
}

func (r *Room) Summary() Summary {
	hostName := "未知"
	if host := r.findPlayer(r.hostID); host != nil {
		hostName = host.Name
	}

	return Summary{
		ID:          r.id,
		HostName:    hostName,
		PlayerCount: len(r.players),
		MaxPlayers:  MAX_PLAYERS,
		Phase:       r.phase,
	}
}
