package pipeline

import (
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Board は1つのストーリーボードの観測可能な状態です。
// 書き込むのは実行中のパイプライン1つだけで、読み取り側は常にコピーを受け取ります。
type Board struct {
	notifyMu sync.Mutex // 遷移と通知の順序を揃える

	mu       sync.Mutex
	state    domain.Storyboard
	running  bool
	watchers map[int]func(domain.Storyboard)
	nextID   int
}

// NewBoard は idle 状態の Board を生成します。
func NewBoard() *Board {
	return &Board{
		state:    domain.Storyboard{Status: domain.RunIdle, Scenes: []domain.Scene{}},
		watchers: make(map[int]func(domain.Storyboard)),
	}
}

// Snapshot は現在の状態のコピーを返します。
func (b *Board) Snapshot() domain.Storyboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.Clone()
}

// Watch は状態遷移ごとに fn を同期的に呼び出すよう登録し、登録解除用の関数を返します。
// fn は遷移の順に1回ずつ呼ばれます。fn の中から Board を更新してはいけません。
func (b *Board) Watch(fn func(domain.Storyboard)) (stop func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.watchers, id)
			b.mu.Unlock()
		})
	}
}

func (b *Board) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return false
	}
	b.running = true
	return true
}

func (b *Board) release() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// update は状態を書き換えて Version を進め、監視者へ通知します。
func (b *Board) update(mutate func(*domain.Storyboard)) {
	b.notifyMu.Lock()
	defer b.notifyMu.Unlock()

	b.mu.Lock()
	mutate(&b.state)
	b.state.Version++
	snap := b.state.Clone()
	fns := make([]func(domain.Storyboard), 0, len(b.watchers))
	for i := 0; i < b.nextID; i++ {
		if fn, ok := b.watchers[i]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}

// reject は実行前の検証エラーを表示します。既存のシーンには触れません。
func (b *Board) reject(msg string) {
	b.update(func(s *domain.Storyboard) {
		s.Status = domain.RunFailed
		s.Error = msg
	})
}

// begin は新しい実行のために以前のシーンを破棄します。
func (b *Board) begin() {
	b.update(func(s *domain.Storyboard) {
		s.Status = domain.RunParsing
		s.Scenes = []domain.Scene{}
		s.Error = ""
	})
}

// abort は解析段階の失敗を表示します。シーンは1つも公開しません。
func (b *Board) abort(msg string) {
	b.update(func(s *domain.Storyboard) {
		s.Status = domain.RunFailed
		s.Scenes = []domain.Scene{}
		s.Error = msg
	})
}

func (b *Board) publish(scenes []domain.Scene) {
	b.update(func(s *domain.Storyboard) {
		s.Status = domain.RunGenerating
		s.Scenes = make([]domain.Scene, len(scenes))
		copy(s.Scenes, scenes)
	})
}

func (b *Board) markLoading(id int) {
	b.update(func(s *domain.Storyboard) {
		s.Scenes[id].IsLoading = true
	})
}

func (b *Board) resolve(id int, img *domain.Image) {
	b.update(func(s *domain.Storyboard) {
		s.Scenes[id].Image = img
		s.Scenes[id].Error = ""
		s.Scenes[id].IsLoading = false
	})
}

func (b *Board) fail(id int, msg string) {
	b.update(func(s *domain.Storyboard) {
		s.Scenes[id].Image = nil
		s.Scenes[id].Error = msg
		s.Scenes[id].IsLoading = false
	})
}

// cancel は処理中のシーンの読み込みフラグを外し、未処理のシーンは pending のまま残します。
func (b *Board) cancel(msg string) {
	b.update(func(s *domain.Storyboard) {
		for i := range s.Scenes {
			s.Scenes[i].IsLoading = false
		}
		s.Status = domain.RunCanceled
		s.Error = msg
	})
}

func (b *Board) complete() {
	b.update(func(s *domain.Storyboard) {
		s.Status = domain.RunCompleted
	})
}
