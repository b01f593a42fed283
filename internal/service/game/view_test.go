package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicView_HidesLivingRoles(t *testing.T) {
	r := startedRoom(t, 5, 2)

	view := r.PublicView()
	assert.Equal(t, PHASE_PLAYING, view.Phase)
	for _, p := range view.Players {
		assert.Equal(t, ROLE_UNSET, p.Role, "role of %s leaked", p.ID)
	}

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Apple")
	assert.NotContains(t, string(raw), "Pear")
	assert.NotContains(t, string(raw), "undercover\"")
}

func TestPublicView_RevealsEliminatedRole(t *testing.T) {
	r := startedRoom(t, 6, 1)
	speakAll(t, r)

	target := idsByRole(r, ROLE_CIVILIAN)[0]
	voteOut(t, r, target)

	for _, p := range r.PublicView().Players {
		if p.ID == target {
			assert.Equal(t, ROLE_CIVILIAN, p.Role)
		} else {
			assert.Equal(t, ROLE_UNSET, p.Role)
		}
	}

	stage, ok := r.PublicView().Stage.(ResultStage)
	require.True(t, ok)
	assert.Equal(t, target, stage.VoteResult.Eliminated.ID)
}

func TestPublicView_GameOverRevealsEverything(t *testing.T) {
	r := startedRoom(t, 4, 1)
	speakAll(t, r)
	voteOut(t, r, idsByRole(r, ROLE_UNDERCOVER)[0])
	r.TimeoutUndercoverGuess()

	view := r.PublicView()
	for _, p := range view.Players {
		assert.NotEqual(t, ROLE_UNSET, p.Role)
	}

	stage := view.Stage.(GameOverStage)
	assert.Equal(t, ROLE_CIVILIAN, stage.Winner)
	assert.Equal(t, "Apple", stage.CivilianWord)
	assert.Equal(t, "Pear", stage.UndercoverWord)
	require.NotNil(t, stage.GuessResult)
	assert.True(t, stage.GuessResult.Timeout)
}

func TestPublicView_StageMatchesPhase(t *testing.T) {
	r := newTestRoom(t, 4)
	assert.Equal(t, PHASE_WAITING, r.PublicView().Stage.Phase())

	require.NoError(t, r.StartGame())
	assert.Equal(t, PHASE_PLAYING, r.PublicView().Stage.Phase())

	speakAll(t, r)
	assert.Equal(t, PHASE_VOTING, r.PublicView().Stage.Phase())
}

func TestSecretFor(t *testing.T) {
	r := newTestRoom(t, 4)

	_, ok := r.SecretFor("p1")
	assert.False(t, ok)

	require.NoError(t, r.StartGame())

	for _, p := range r.Players() {
		secret, ok := r.SecretFor(p.ID)
		require.True(t, ok)
		assert.Equal(t, p.Role, secret.Role)
		assert.Equal(t, p.Word, secret.Word)
	}

	_, ok = r.SecretFor("ghost")
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	r := newTestRoom(t, 2)

	assert.Equal(t, Summary{
		ID:          "123456",
		HostName:    "Player 1",
		PlayerCount: 2,
		MaxPlayers:  MAX_PLAYERS,
		Phase:       PHASE_WAITING,
	}, r.Summary())
}
