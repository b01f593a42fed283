package voice

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedType = errors.New("不支持的音频格式")
	ErrTooLarge        = errors.New("语音文件过大")
	ErrEmpty           = errors.New("语音文件为空")
	ErrNotFound        = errors.New("语音不存在")
)

// 允许的音频类型及其默认扩展名
var allowedTypes = map[string]string{
	"audio/webm": ".webm",
	"audio/ogg":  ".ogg",
	"audio/mp4":  ".m4a",
	"audio/mpeg": ".mp3",
	"audio/wav":  ".wav",
}

var allowedExts = []string{".webm", ".ogg", ".m4a", ".mp4", ".mp3", ".mpeg", ".wav"}

// Store 把语音发言保存为 <uuid>.<ext> 文件。Room 只保存返回的 URL，
// 不关心内容本身。
type Store struct {
	dir       string
	maxBytes  int64
	urlPrefix string
}

func NewStore(dir string, maxBytes int64, urlPrefix string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}

	return &Store{
		dir:       dir,
		maxBytes:  maxBytes,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}, nil
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save 校验类型后写入文件，返回可访问的 URL
func (s *Store) Save(r io.Reader, contentType, originalName string) (string, error) {
	ext, err := pickExt(contentType, originalName)
	if err != nil {
		return "", err
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("生成文件名失败: %w", err)
	}

	name := id.String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("创建语音文件失败: %w", err)
	}

	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()

	switch {
	case err != nil:
		err = fmt.Errorf("写入语音文件失败: %w", err)
	case closeErr != nil:
		err = fmt.Errorf("写入语音文件失败: %w", closeErr)
	case written > s.maxBytes:
		err = ErrTooLarge
	case written == 0:
		err = ErrEmpty
	}

	if err != nil {
		_ = os.Remove(path)
		return "", err
	}

	zap.L().Debug(
		"语音已保存",
		zap.String("file", name),
		zap.Int64("bytes", written),
	)

	return s.urlPrefix + "/" + name, nil
}

func pickExt(contentType, originalName string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", ErrUnsupportedType
	}

	defaultExt, ok := allowedTypes[mediaType]
	if !ok {
		return "", ErrUnsupportedType
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if slices.Contains(allowedExts, ext) {
		return ext, nil
	}

	return defaultExt, nil
}

// Open 打开已保存的语音，只接受 Save 生成的文件名
func (s *Store) Open(name string) (*os.File, error) {
	ext := filepath.Ext(name)
	if !slices.Contains(allowedExts, ext) {
		return nil, ErrNotFound
	}

	if _, err := uuid.Parse(strings.TrimSuffix(name, ext)); err != nil {
		return nil, ErrNotFound
	}

	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("打开语音文件失败: %w", err)
	}

	return f, nil
}
