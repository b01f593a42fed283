package words

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

//go:embed pairs.json
var defaultPairs []byte

// Pair 一组相近但不同的词，多数派拿 Civilian，少数派拿 Undercover
type Pair struct {
	Civilian   string `mapstructure:"civilian" json:"civilian"`
	Undercover string `mapstructure:"undercover" json:"undercover"`
}

type deckFile struct {
	Pairs []Pair `mapstructure:"pairs"`
}

// Deck 是内存中的词库，并发安全
type Deck struct {
	mu    sync.Mutex
	pairs []Pair
	rng   *rand.Rand
	last  int
}

func NewDeck(pairs []Pair, rng *rand.Rand) (*Deck, error) {
	valid := make([]Pair, 0, len(pairs))

	for _, p := range pairs {
		civilian := strings.TrimSpace(p.Civilian)
		undercover := strings.TrimSpace(p.Undercover)

		if civilian == "" || undercover == "" || strings.EqualFold(civilian, undercover) {
			zap.L().Warn(
				"忽略无效词对",
				zap.String("civilian", p.Civilian),
				zap.String("undercover", p.Undercover),
			)
			continue
		}

		valid = append(valid, Pair{Civilian: civilian, Undercover: undercover})
	}

	if len(valid) == 0 {
		return nil, errors.New("词库为空")
	}

	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Deck{
		pairs: valid,
		rng:   rng,
		last:  -1,
	}, nil
}

// LoadDeck 从 JSON 文件加载词库，path 为空时使用内置词库
func LoadDeck(path string) (*Deck, error) {
	v := viper.New()
	v.SetConfigType("json")

	var err error
	if path == "" {
		err = v.ReadConfig(bytes.NewReader(defaultPairs))
	} else {
		v.SetConfigFile(path)
		err = v.ReadInConfig()
	}

	if err != nil {
		return nil, fmt.Errorf("读取词库失败: %w", err)
	}

	var file deckFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("解析词库失败: %w", err)
	}

	deck, err := NewDeck(file.Pairs, nil)
	if err != nil {
		return nil, err
	}

	zap.L().Info(
		"词库加载完成",
		zap.String("path", path),
		zap.Int("pairs", deck.Len()),
	)

	return deck, nil
}

func (d *Deck) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.pairs)
}

// RandomPair 随机抽一组词，词库多于一组时不会连续抽到同一组
func (d *Deck) RandomPair() Pair {
	d.mu.Lock()
	defer d.mu.Unlock()

	idx := d.rng.IntN(len(d.pairs))
	if len(d.pairs) > 1 && idx == d.last {
		idx = (idx + 1 + d.rng.IntN(len(d.pairs)-1)) % len(d.pairs)
	}

	d.last = idx

	return d.pairs[idx]
}
