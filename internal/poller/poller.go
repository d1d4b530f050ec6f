// Package poller runs the scheduled extraction-status refresh loop.
// The records service processes uploads asynchronously and exposes no
// push channel, so the poller sweeps unfinished exams and refreshes
// each one on its own backoff schedule until it reaches a terminal
// status.
package poller

import (
	"context"
	"time"

	"github.com/clinrec/console/internal/model"
	"github.com/clinrec/console/pkg/logger"
	"github.com/clinrec/console/pkg/messaging"
	"github.com/clinrec/console/pkg/metrics"
)

// ExamSource is the slice of the exam service the poller needs.
type ExamSource interface {
	ListAllByPatient(ctx context.Context, patientID int64) ([]*model.Exam, error)
	Refresh(ctx context.Context, examID int64) (*model.Exam, error)
}

// PatientSource lists patients so the poller can discover their exams.
type PatientSource interface {
	List(ctx context.Context, search string, page, perPage int) ([]*model.Patient, int, error)
}

// Notifier receives operator alerts for terminal transitions.
type Notifier interface {
	SendExtractionFailed(ctx context.Context, exam *model.Exam) error
	SendValueAlert(ctx context.Context, exam *model.Exam, values []model.ExtractedValue) error
}

const (
	eventTopic        = "exam.lifecycle"
	discoveryPageSize = 100
)

type Config struct {
	// Interval is both the sweep cadence and the base refresh delay
	// for a newly tracked exam.
	Interval time.Duration
	// MaxBackoff caps the per-exam refresh delay; the delay doubles
	// after every refresh that observes no status change.
	MaxBackoff time.Duration
}

// tracked is the poller's view of one unfinished exam.
type tracked struct {
	patientID  int64
	lastStatus model.ProcessingStatus
	nextPoll   time.Time
	backoff    time.Duration
}

type Poller struct {
	exams    ExamSource
	patients PatientSource
	broker   messaging.Broker
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger

	interval   time.Duration
	maxBackoff time.Duration
	now        func() time.Time

	// Sweeps run strictly sequentially, so the map needs no lock.
	watch map[int64]*tracked
}

func New(exams ExamSource, patients PatientSource, broker messaging.Broker, notifier Notifier, m *metrics.Metrics, cfg Config, log *logger.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = cfg.Interval
	}
	return &Poller{
		exams:      exams,
		patients:   patients,
		broker:     broker,
		notifier:   notifier,
		metrics:    m,
		logger:     log.WithComponent("poller"),
		interval:   cfg.Interval,
		maxBackoff: cfg.MaxBackoff,
		now:        time.Now,
		watch:      make(map[int64]*tracked),
	}
}

// Run sweeps until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		"interval", p.interval.String(), "max_backoff", p.maxBackoff.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := p.Sweep(ctx); err != nil {
				p.logger.Error(err, "sweep failed")
			}
		}
	}
}

// Sweep performs one full pass: discover unfinished exams, then
// refresh every tracked exam whose backoff delay has elapsed.
func (p *Poller) Sweep(ctx context.Context) error {
	start := p.now()
	if p.metrics != nil {
		p.metrics.PollerSweeps.Inc()
		defer func() {
			p.metrics.PollerSweepLatency.Observe(time.Since(start).Seconds())
		}()
	}

	if err := p.discover(ctx); err != nil {
		return err
	}
	p.refreshDue(ctx)
	return nil
}

// discover walks all patients and starts tracking any unfinished exam
// not yet watched. Already-tracked exams keep their backoff schedule.
func (p *Poller) discover(ctx context.Context) error {
	page := 1
	for {
		patients, total, err := p.patients.List(ctx, "", page, discoveryPageSize)
		if err != nil {
			return err
		}
		for _, patient := range patients {
			exams, err := p.exams.ListAllByPatient(ctx, patient.ID)
			if err != nil {
				p.logger.Error(err, "failed to list exams", "patient_id", patient.ID)
				continue
			}
			for _, exam := range exams {
				if exam.ProcessingStatus.Terminal() {
					continue
				}
				if _, watched := p.watch[exam.ID]; watched {
					continue
				}
				p.watch[exam.ID] = &tracked{
					patientID:  patient.ID,
					lastStatus: exam.ProcessingStatus,
					nextPoll:   p.now(),
					backoff:    p.interval,
				}
				p.logger.Debug("tracking exam",
					"exam_id", exam.ID, "status", string(exam.ProcessingStatus))
			}
		}
		if len(patients) == 0 || page*discoveryPageSize >= total {
			return nil
		}
		page++
	}
}

func (p *Poller) refreshDue(ctx context.Context) {
	now := p.now()
	for examID, entry := range p.watch {
		if entry.nextPoll.After(now) {
			continue
		}

		exam, err := p.exams.Refresh(ctx, examID)
		if p.metrics != nil {
			p.metrics.PollerRefreshes.Inc()
		}
		if err != nil {
			p.logger.Error(err, "refresh failed", "exam_id", examID)
			entry.schedule(now, p.maxBackoff)
			continue
		}

		if exam.ProcessingStatus == entry.lastStatus {
			entry.schedule(now, p.maxBackoff)
			continue
		}

		p.logger.Info("exam status changed",
			"exam_id", examID,
			"from", string(entry.lastStatus),
			"to", string(exam.ProcessingStatus))
		if p.metrics != nil {
			p.metrics.PollerTransitions.WithLabelValues(string(exam.ProcessingStatus)).Inc()
		}

		if !exam.ProcessingStatus.Terminal() {
			// pending -> processing: keep watching, restart the
			// backoff from the base interval.
			entry.lastStatus = exam.ProcessingStatus
			entry.backoff = p.interval
			entry.nextPoll = now.Add(entry.backoff)
			continue
		}

		delete(p.watch, examID)
		p.announce(ctx, exam)
	}
}

// schedule pushes the next poll out, doubling the delay up to the cap.
func (e *tracked) schedule(now time.Time, maxBackoff time.Duration) {
	e.nextPoll = now.Add(e.backoff)
	e.backoff *= 2
	if e.backoff > maxBackoff {
		e.backoff = maxBackoff
	}
}

// announce publishes the terminal transition and sends any configured
// alerts. Failures here are logged only; the transition itself stands.
func (p *Poller) announce(ctx context.Context, exam *model.Exam) {
	switch exam.ProcessingStatus {
	case model.StatusError:
		p.publish(ctx, messaging.EventExamFailed, exam, nil)
		if err := p.notifier.SendExtractionFailed(ctx, exam); err != nil {
			p.logger.Error(err, "failure alert not delivered", "exam_id", exam.ID)
		}

	case model.StatusCompleted:
		p.publish(ctx, messaging.EventExamCompleted, exam, nil)

		var flagged []model.ExtractedValue
		for _, value := range exam.ExtractedValues {
			if _, out := value.OutOfRange(); out {
				flagged = append(flagged, value)
			}
		}
		if len(flagged) == 0 {
			return
		}
		p.publish(ctx, messaging.EventValueAlert, exam, flagged)
		if err := p.notifier.SendValueAlert(ctx, exam, flagged); err != nil {
			p.logger.Error(err, "value alert not delivered", "exam_id", exam.ID)
		}
	}
}

type eventPayload struct {
	ExamID        int64                  `json:"exam_id"`
	PatientID     int64                  `json:"patient_id"`
	Status        model.ProcessingStatus `json:"status"`
	ExamType      string                 `json:"exam_type,omitempty"`
	Error         string                 `json:"error,omitempty"`
	FlaggedValues []model.ExtractedValue `json:"flagged_values,omitempty"`
}

func (p *Poller) publish(ctx context.Context, eventType string, exam *model.Exam, flagged []model.ExtractedValue) {
	event, err := messaging.NewEvent(eventType, eventPayload{
		ExamID:        exam.ID,
		PatientID:     exam.PatientID,
		Status:        exam.ProcessingStatus,
		ExamType:      exam.ExamType,
		Error:         exam.ProcessingError,
		FlaggedValues: flagged,
	})
	if err != nil {
		p.logger.Error(err, "failed to build event", "event_type", eventType)
		return
	}

	if err := p.broker.Publish(ctx, eventTopic, event); err != nil {
		if p.metrics != nil {
			p.metrics.EventsFailed.WithLabelValues(eventType).Inc()
		}
		p.logger.Error(err, "failed to publish event",
			"event_type", eventType, "exam_id", exam.ID)
		return
	}
	if p.metrics != nil {
		p.metrics.EventsPublished.WithLabelValues(eventType).Inc()
	}
}
