package view

import (
	"context"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

type FormPhase string

const (
	FormIdle       FormPhase = "idle"
	FormSubmitting FormPhase = "submitting"
	FormSuccess    FormPhase = "success"
	FormFailed     FormPhase = "failed"
)

// FormStatus - видимое состояние формы. Message при Idle - сообщение валидации.
type FormStatus struct {
	Phase   FormPhase `json:"phase"`
	Message string    `json:"message,omitempty"`
}

// Тайминги показа сообщений для каждой формы.
var (
	createListingTimings  = formTimings{success: 2 * time.Second, failure: 5 * time.Second}
	viewingRequestTimings = formTimings{success: 5 * time.Second, failure: 7 * time.Second}
	signInTimings         = formTimings{success: 2 * time.Second, failure: 5 * time.Second}
	signUpTimings         = formTimings{success: 2 * time.Second, failure: 5 * time.Second}
)

type formTimings struct {
	success time.Duration
	failure time.Duration
}

// submission описывает один цикл отправки формы.
type submission struct {
	// call выполняется вне мьютекса на контексте, не зависящем от жизни экрана
	call func(ctx context.Context) error

	successMessage string
	// onSuccess вызывается под мьютексом: сброс полей
	onSuccess func()
	// afterSuccess вызывается вне мьютекса сразу после успеха
	afterSuccess func(ctx context.Context)
	// afterSuccessDisplay вызывается вне мьютекса, когда истекло время показа успеха
	afterSuccessDisplay func()
	failureMessage      func(err error) string
}

// form - машина состояний Idle -> Submitting -> (Success | Failed) -> Idle.
type form struct {
	b         *base
	scheduler port.SchedulerPort
	timings   formTimings

	status    FormStatus
	stopTimer func() bool
}

func newForm(b *base, scheduler port.SchedulerPort, timings formTimings) *form {
	f := &form{b: b, scheduler: scheduler, timings: timings, status: FormStatus{Phase: FormIdle}}
	b.track(f.stop)
	return f
}

// submit запускает отправку. prepare вызывается под мьютексом: читает поля,
// проверяет их и возвращает submission либо текст ошибки валидации.
// Повторная отправка во время Submitting игнорируется.
func (f *form) submit(prepare func() (*submission, string)) {
	var (
		sub     *submission
		started bool
	)
	f.b.mutate(func() {
		if f.status.Phase == FormSubmitting {
			return
		}
		f.resetTimer()

		var invalid string
		sub, invalid = prepare()
		if invalid != "" {
			f.status = FormStatus{Phase: FormIdle, Message: invalid}
			f.schedule(f.timings.failure, FormIdle)
			return
		}
		f.status = FormStatus{Phase: FormSubmitting}
		started = true
	})
	if !started {
		return
	}

	// результат записи не должен теряться из-за ухода с экрана
	callCtx := context.WithoutCancel(f.b.ctx)
	go f.run(callCtx, sub)
}

func (f *form) run(ctx context.Context, sub *submission) {
	err := sub.call(ctx)

	applied := f.b.mutate(func() {
		if err != nil {
			f.status = FormStatus{Phase: FormFailed, Message: sub.failureMessage(err)}
			f.schedule(f.timings.failure, FormFailed)
			return
		}
		f.status = FormStatus{Phase: FormSuccess, Message: sub.successMessage}
		if sub.onSuccess != nil {
			sub.onSuccess()
		}
		f.scheduleSuccess(sub.afterSuccessDisplay)
	})

	if !applied {
		f.b.logger.Debug("Submission finished after view teardown, result discarded", port.Fields{"failed": err != nil})
		return
	}
	if err != nil {
		f.b.logger.Warn("Submission failed", port.Fields{"error": err.Error()})
		return
	}
	if sub.afterSuccess != nil {
		sub.afterSuccess(ctx)
	}
}

// schedule возвращает форму в Idle без сообщения, если к моменту срабатывания
// фаза все еще from. Вызывается под мьютексом.
func (f *form) schedule(d time.Duration, from FormPhase) {
	f.stopTimer = f.scheduler.AfterFunc(d, func() {
		f.b.mutate(func() {
			if f.status.Phase == from {
				f.status = FormStatus{Phase: FormIdle}
			}
		})
	})
}

func (f *form) scheduleSuccess(after func()) {
	f.stopTimer = f.scheduler.AfterFunc(f.timings.success, func() {
		dismissed := false
		f.b.mutate(func() {
			if f.status.Phase == FormSuccess {
				f.status = FormStatus{Phase: FormIdle}
				dismissed = true
			}
		})
		if dismissed && after != nil {
			after()
		}
	})
}

func (f *form) resetTimer() {
	if f.stopTimer != nil {
		f.stopTimer()
		f.stopTimer = nil
	}
}

// stop отменяет таймер показа при закрытии экрана.
func (f *form) stop() {
	f.b.mu.Lock()
	f.resetTimer()
	f.b.mu.Unlock()
}
