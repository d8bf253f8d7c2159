package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"inspection-portal/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Job describes one unread report observed in a hierarchy refetch.
type Job struct {
	ReportID     string
	ReportNumber string
	PartnerID    string
}

// WorkerPool fans incoming new-report jobs out to a fixed number of
// workers that deliver web push notifications. Each report id is
// delivered at most once per process lifetime; dashboards refetch the
// hierarchy constantly and the same unread report keeps reappearing
// until it is marked read.
type WorkerPool struct {
	size    int
	jobs    chan Job
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Job, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		seen:    make(map[string]struct{}),
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.notify(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a job unless the report was already announced.
// It never blocks the caller: when the queue is full the job is
// dropped and will be retried on the next refetch that still sees the
// report unread.
func (wp *WorkerPool) Dispatch(job Job) {
	wp.mu.Lock()
	if _, dup := wp.seen[job.ReportID]; dup {
		wp.mu.Unlock()
		return
	}
	wp.seen[job.ReportID] = struct{}{}
	wp.mu.Unlock()

	select {
	case wp.jobs <- job:
	default:
		wp.mu.Lock()
		delete(wp.seen, job.ReportID)
		wp.mu.Unlock()
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Job {
	return wp.jobs
}

// notify fetches the subscriptions scoped to the job's partner (plus
// the unscoped admin subscriptions) and pushes to each.
func (wp *WorkerPool) notify(ctx context.Context, job Job) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("partner_id = ? OR partner_id = ''", job.PartnerID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for partner %s: %v", job.PartnerID, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	log.Printf("Sending %d notifications for report %s", len(subscriptions), job.ReportID)

	message := fmt.Sprintf("New inspection report %s is available", job.ReportNumber)
	for _, sub := range subscriptions {
		wp.send(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
