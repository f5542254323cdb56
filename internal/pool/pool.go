package pool

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultQueueFactor はキュー容量を省略した場合のワーカー1つあたりのキュー容量
const DefaultQueueFactor = 16

var (
	// ErrInvalidSize はワーカー数が0以下の場合に返される
	ErrInvalidSize = errors.New("ワーカー数は1以上を指定してください")

	// ErrClosed は閉じられたプールにジョブを投入した場合に返される
	ErrClosed = errors.New("プールは既に閉じられています")

	// ErrNilJob はnilのジョブを投入した場合に返される
	ErrNilJob = errors.New("ジョブがnilです")
)

// Job はワーカーが実行する引数・戻り値なしの処理単位
type Job func()

// Stats はプールの実行統計
type Stats struct {
	Workers   int    `json:"workers"`   // ワーカー数
	Queued    int    `json:"queued"`    // キューで待機中のジョブ数
	Submitted uint64 `json:"submitted"` // 投入されたジョブ数
	Completed uint64 `json:"completed"` // 正常終了したジョブ数
	Panicked  uint64 `json:"panicked"`  // panicしたジョブ数
}

// worker はワーカーの識別子と終了通知を保持する
type worker struct {
	id   uuid.UUID
	done chan struct{}
}

// Pool は固定数のワーカーと共有ジョブキューを持つワーカープール
type Pool struct {
	workers []*worker
	jobs    chan Job

	// closed と jobs のcloseを投入処理から守る
	mu     sync.RWMutex
	closed bool

	submitted atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
}

// New は size 個のワーカーを持つプールを作成する
func New(size int) (*Pool, error) {
	return NewWithQueue(size, 0)
}

// NewWithQueue はキュー容量を指定してプールを作成する
// queueSize が0以下の場合は size*DefaultQueueFactor を使う
func NewWithQueue(size, queueSize int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if queueSize <= 0 {
		queueSize = size * DefaultQueueFactor
	}

	p := &Pool{
		workers: make([]*worker, 0, size),
		jobs:    make(chan Job, queueSize),
	}

	for i := 0; i < size; i++ {
		w := &worker{
			id:   uuid.New(),
			done: make(chan struct{}),
		}
		p.workers = append(p.workers, w)
		go p.run(w)
	}

	log.Printf("ワーカープールを開始しました: ワーカー数=%d キュー容量=%d", size, queueSize)
	return p, nil
}

// Execute はジョブをキューに投入する
// キューが満杯の場合は空きができるまでブロックする
func (p *Pool) Execute(job Job) error {
	if job == nil {
		return ErrNilJob
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	p.submitted.Add(1)
	p.jobs <- job
	return nil
}

// Close はキューを閉じ、全ワーカーの終了を待つ
// 複数回呼んでも安全
func (p *Pool) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobs)
	}
	p.mu.Unlock()

	for _, w := range p.workers {
		log.Printf("ワーカー %s を停止しています", w.id)
		<-w.done
	}
}

// Size はワーカー数を返す
func (p *Pool) Size() int {
	return len(p.workers)
}

// WorkerIDs はワーカーの識別子一覧を返す
func (p *Pool) WorkerIDs() []string {
	ids := make([]string, 0, len(p.workers))
	for _, w := range p.workers {
		ids = append(ids, w.id.String())
	}
	return ids
}

// Stats は現在の実行統計を返す
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   len(p.workers),
		Queued:    len(p.jobs),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}

// run はキューが閉じられるまでジョブを取り出して実行する
func (p *Pool) run(w *worker) {
	defer close(w.done)

	for job := range p.jobs {
		log.Printf("ワーカー %s がジョブを受け取りました", w.id)
		p.runJob(w, job)
	}

	log.Printf("ワーカー %s: キューが閉じられたため終了します", w.id)
}

// runJob は1つのジョブを実行し、panicをワーカー内で回収する
func (p *Pool) runJob(w *worker, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			log.Printf("ワーカー %s: ジョブがpanicしました: %v", w.id, r)
		}
	}()

	job()
	p.completed.Add(1)
}
