package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// FileStorage хранит запуски в файле построчно в JSON и держит индекс в памяти
type FileStorage struct {
	mu     sync.RWMutex
	file   *os.File
	writer *bufio.Writer
	runs   map[string]Run
	byUser map[string][]string
}

// NewFileStorage открывает файл хранилища и загружает из него ранее сохранённые запуски
func NewFileStorage(path string) (*FileStorage, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	s := &FileStorage{
		file:   file,
		writer: bufio.NewWriter(file),
		runs:   make(map[string]Run),
		byUser: make(map[string][]string),
	}
	if err := s.load(); err != nil {
		file.Close()
		return nil, err
	}
	return s, nil
}

func (f *FileStorage) load() error {
	scanner := bufio.NewScanner(f.file)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var run Run
		if err := json.Unmarshal(scanner.Bytes(), &run); err != nil {
			logger.Log.Warn("Skipping malformed run record", zap.Int("line", line), zap.Error(err))
			continue
		}
		f.index(run)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read storage file: %w", err)
	}
	logger.Log.Info("File storage loaded", zap.String("path", f.file.Name()), zap.Int("runs", len(f.runs)))
	return nil
}

func (f *FileStorage) index(run Run) {
	f.runs[run.ID] = run
	if run.UserID != "" {
		f.byUser[run.UserID] = append(f.byUser[run.UserID], run.ID)
	}
}

func (f *FileStorage) Ping(ctx context.Context) error {
	return nil
}

func (f *FileStorage) Create(ctx context.Context, run Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		logger.Log.Info("Failed to marshal run", zap.Error(err))
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.runs[run.ID]; ok {
		return ErrConflict
	}
	if _, err := f.writer.Write(data); err != nil {
		logger.Log.Info("Failed to write run", zap.String("run", run.ID), zap.Error(err))
		return err
	}
	if err := f.writer.WriteByte('\n'); err != nil {
		logger.Log.Info("Error writing data new line", zap.Error(err))
		return err
	}
	if err := f.writer.Flush(); err != nil {
		return err
	}
	f.index(run)
	return nil
}

func (f *FileStorage) Get(ctx context.Context, id string) (*Run, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	run, ok := f.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &run, nil
}

// GetByUser возвращает запуски пользователя, новые первыми
func (f *FileStorage) GetByUser(ctx context.Context, userID string) ([]models.RunSummary, error) {
	f.mu.RLock()
	ids := f.byUser[userID]
	runs := make([]Run, 0, len(ids))
	for _, id := range ids {
		runs = append(runs, f.runs[id])
	}
	f.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	result := make([]models.RunSummary, 0, len(runs))
	for _, r := range runs {
		result = append(result, r.Summary())
	}
	return result, nil
}

func (f *FileStorage) CountRuns(ctx context.Context) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int64(len(f.runs)), nil
}

func (f *FileStorage) CountUsers(ctx context.Context) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return int64(len(f.byUser)), nil
}

func (f *FileStorage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writer.Flush(); err != nil {
		return err
	}
	return f.file.Close()
}
