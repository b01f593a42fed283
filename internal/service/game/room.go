package game

import (
	"math/rand/v2"
	"slices"
)

// Room 是一局“谁是卧底”的完整状态机，只包含状态和转移逻辑，不做任何 I/O。
// Room 不是并发安全的，调用方需要保证同一时刻只有一个协程在操作它。
type Room struct {
	id     string
	hostID string
	// 按加入顺序排列
	players []*Player

	phase           Phase
	round           int
	undercoverCount int

	civilianWord   string
	undercoverWord string

	// 本轮发言顺序，只包含发言阶段开始时存活的玩家
	speakingOrder []string
	speakingIndex int

	changeWordVotes map[string]struct{}
	wordChanged     bool

	// 上一局的卧底，下一局分配时尽量避开
	lastUndercoverIDs map[string]struct{}

	guess *guessState

	speechHistory []RoundSpeeches
	voteResult    *VoteResult
	winner        Role

	words WordPairProvider
	rng   *rand.Rand
}

// 只在 undercover_guess 和由猜词结束的 game_over 阶段存在
type guessState struct {
	guesserID string
	result    *GuessResult
}

type RoomOption func(*Room)

// WithRand 指定随机源，测试中用于固定洗牌结果
func WithRand(rng *rand.Rand) RoomOption {
	return func(r *Room) {
		r.rng = rng
	}
}

func NewRoom(id string, words WordPairProvider, opts ...RoomOption) *Room {
	r := &Room{
		id:                id,
		players:           make([]*Player, 0, MAX_PLAYERS),
		phase:             PHASE_WAITING,
		undercoverCount:   1,
		changeWordVotes:   make(map[string]struct{}),
		lastUndercoverIDs: make(map[string]struct{}),
		words:             words,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return r
}

func (r *Room) ID() string {
	return r.id
}

func (r *Room) HostID() string {
	return r.hostID
}

func (r *Room) Phase() Phase {
	return r.phase
}

func (r *Room) Round() int {
	return r.round
}

func (r *Room) UndercoverCount() int {
	return r.undercoverCount
}

func (r *Room) Winner() Role {
	return r.winner
}

func (r *Room) PlayerCount() int {
	return len(r.players)
}

// Player 返回玩家的副本
func (r *Room) Player(id string) (Player, bool) {
	p := r.findPlayer(id)
	if p == nil {
		return Player{}, false
	}

	return *p, true
}

// Players 按加入顺序返回所有玩家的副本
func (r *Room) Players() []Player {
	players := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, *p)
	}

	return players
}

// GuesserID 返回正在猜词的卧底，不在猜词阶段时为空
func (r *Room) GuesserID() string {
	if r.phase != PHASE_UNDERCOVER_GUESS || r.guess == nil {
		return ""
	}

	return r.guess.guesserID
}

func (r *Room) findPlayer(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}

	return nil
}

func (r *Room) alivePlayers() []*Player {
	alive := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive {
			alive = append(alive, p)
		}
	}

	return alive
}

func (r *Room) AddPlayer(id, name, avatar string) (Player, error) {
	if r.phase != PHASE_WAITING {
		return Player{}, ErrGameInProgress
	}

	if len(r.players) >= MAX_PLAYERS {
		return Player{}, ErrRoomFull
	}

	if r.findPlayer(id) != nil {
		return Player{}, ErrAlreadyJoined
	}

	player := &Player{
		ID:     id,
		Name:   name,
		Avatar: avatar,
		Alive:  true,
		Online: true,
	}

	// 第一个加入的玩家成为房主，并自动准备
	if len(r.players) == 0 {
		r.hostID = id
		player.Ready = true
	}

	r.players = append(r.players, player)

	return *player, nil
}

// RemovePlayer 移除玩家，返回房间是否已空。房主离开时由剩余的第一位玩家接任。
func (r *Room) RemovePlayer(id string) bool {
	idx := slices.IndexFunc(r.players, func(p *Player) bool {
		return p.ID == id
	})
	if idx < 0 {
		return len(r.players) == 0
	}

	r.players = slices.Delete(r.players, idx, idx+1)

	if id == r.hostID {
		r.hostID = ""
		if len(r.players) > 0 {
			r.hostID = r.players[0].ID
		}
	}

	return len(r.players) == 0
}

func (r *Room) SetOnline(id string, online bool) error {
	p := r.findPlayer(id)
	if p == nil {
		return ErrInvalidPlayer
	}

	p.Online = online

	return nil
}

// SetReady 设置准备状态，房主始终视为已准备
func (r *Room) SetReady(id string, ready bool) error {
	if r.phase != PHASE_WAITING {
		return ErrWrongPhase
	}

	p := r.findPlayer(id)
	if p == nil {
		return ErrInvalidPlayer
	}

	if id == r.hostID {
		return nil
	}

	p.Ready = ready

	return nil
}

// AllReady 人数足够并且除房主外所有人都已准备
func (r *Room) AllReady() bool {
	if len(r.players) < MIN_PLAYERS {
		return false
	}

	for _, p := range r.players {
		if p.ID != r.hostID && !p.Ready {
			return false
		}
	}

	return true
}

// MaxUndercoverCount 卧底人数上限为 floor((n-1)/2)，至少为 1
func (r *Room) MaxUndercoverCount() int {
	return max((len(r.players)-1)/2, 1)
}

// SetUndercoverCount 设置卧底人数并返回实际生效的值，权限由调用方检查
func (r *Room) SetUndercoverCount(n int) (int, error) {
	if r.phase != PHASE_WAITING {
		return r.undercoverCount, ErrWrongPhase
	}

	r.undercoverCount = min(max(n, 1), r.MaxUndercoverCount())

	return r.undercoverCount, nil
}

func (r *Room) StartGame() error {
	if r.phase != PHASE_WAITING {
		return ErrWrongPhase
	}

	if len(r.players) < MIN_PLAYERS {
		return ErrNotEnoughPlayers
	}

	r.undercoverCount = min(max(r.undercoverCount, 1), r.MaxUndercoverCount())

	pair := r.words.RandomPair()
	r.civilianWord = pair.Civilian
	r.undercoverWord = pair.Undercover

	undercovers := r.pickUndercovers()

	for _, p := range r.players {
		p.Alive = true
		p.Vote = ""
		p.Speech = nil

		if _, ok := undercovers[p.ID]; ok {
			p.Role = ROLE_UNDERCOVER
			p.Word = r.undercoverWord
		} else {
			p.Role = ROLE_CIVILIAN
			p.Word = r.civilianWord
		}
	}

	r.lastUndercoverIDs = undercovers

	r.phase = PHASE_PLAYING
	r.round = 0
	r.speakingOrder = nil
	r.speakingIndex = 0
	r.winner = ROLE_UNSET
	r.voteResult = nil
	r.guess = nil
	r.changeWordVotes = make(map[string]struct{})
	r.wordChanged = false
	r.speechHistory = nil

	return nil
}

// pickUndercovers 对所有玩家做一次 Fisher-Yates 洗牌后取前 undercoverCount 个。
// 如果排除上一局的卧底后候选人仍然足够，则把他们挪到队尾，降低连任的概率。
func (r *Room) pickUndercovers() map[string]struct{} {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}

	r.rng.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	fresh := make([]string, 0, len(ids))
	repeat := make([]string, 0, len(r.lastUndercoverIDs))

	for _, id := range ids {
		if _, ok := r.lastUndercoverIDs[id]; ok {
			repeat = append(repeat, id)
		} else {
			fresh = append(fresh, id)
		}
	}

	if len(fresh) >= r.undercoverCount {
		ids = append(fresh, repeat...)
	}

	picked := make(map[string]struct{}, r.undercoverCount)
	for _, id := range ids[:r.undercoverCount] {
		picked[id] = struct{}{}
	}

	return picked
}

// clearGame 清空所有只在对局中有意义的状态，玩家回到等待状态
func (r *Room) clearGame() {
	r.phase = PHASE_WAITING
	r.round = 0
	r.civilianWord = ""
	r.undercoverWord = ""
	r.speakingOrder = nil
	r.speakingIndex = 0
	r.changeWordVotes = make(map[string]struct{})
	r.wordChanged = false
	r.guess = nil
	r.speechHistory = nil
	r.voteResult = nil
	r.winner = ROLE_UNSET

	for _, p := range r.players {
		p.resetForWaiting(p.ID == r.hostID)
	}
}

// AbortGame 在游戏中有玩家掉线超时时调用：移除该玩家并强制回到等待阶段，
// 对局无法恢复。返回房间是否已空。
func (r *Room) AbortGame(disconnectedID string) bool {
	empty := r.RemovePlayer(disconnectedID)

	r.clearGame()
	r.lastUndercoverIDs = make(map[string]struct{})

	return empty
}

// ResetForNewGame 房主在游戏结束后选择再来一局，保留上一局的卧底记录
func (r *Room) ResetForNewGame() error {
	if r.phase != PHASE_GAME_OVER {
		return ErrWrongPhase
	}

	r.clearGame()

	return nil
}
