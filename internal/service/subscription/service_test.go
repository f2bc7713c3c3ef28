package subscription

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/internal/service/promo"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

type pairKey struct {
	user, course uuid.UUID
}

// memLedger enforces the (user, course) uniqueness the way the database
// constraint does. gate, when set, holds every advisory lookup until the
// expected number of callers have arrived so they all miss each other.
type memLedger struct {
	mu      sync.Mutex
	rows    map[pairKey]models.Subscription
	courses map[uuid.UUID]models.Course
	creates int
	gate    *barrier
}

func newMemLedger(courses ...models.Course) *memLedger {
	l := &memLedger{rows: map[pairKey]models.Subscription{}, courses: map[uuid.UUID]models.Course{}}
	for _, c := range courses {
		l.courses[c.ID] = c
	}
	return l
}

func (l *memLedger) ByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*models.Subscription, error) {
	l.mu.Lock()
	sub, ok := l.rows[pairKey{userID, courseID}]
	l.mu.Unlock()
	if l.gate != nil {
		l.gate.wait()
	}
	if !ok {
		return nil, app_errors.ErrSubscriptionNotFound
	}
	return &sub, nil
}

func (l *memLedger) Create(_ context.Context, sub *models.Subscription) (models.CreateOutcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.creates++
	key := pairKey{sub.UserID, sub.CourseID}
	if _, exists := l.rows[key]; exists {
		return models.CreateOutcomeAlreadyExists, nil
	}
	sub.ID = uuid.New()
	sub.SubscribedAt = time.Now().UTC().Add(time.Duration(len(l.rows)) * time.Millisecond)
	l.rows[key] = *sub
	return models.CreateOutcomeCreated, nil
}

func (l *memLedger) ListByUser(_ context.Context, userID uuid.UUID) ([]models.SubscriptionDetail, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.SubscriptionDetail
	for key, sub := range l.rows {
		if key.user == userID {
			out = append(out, models.SubscriptionDetail{Subscription: sub, Course: l.courses[key.course]})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Subscription.SubscribedAt.After(out[j].Subscription.SubscribedAt)
	})
	return out, nil
}

func (l *memLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

type barrier struct {
	mu      sync.Mutex
	n       int
	release chan struct{}
}

func newBarrier(n int) *barrier {
	return &barrier{n: n, release: make(chan struct{})}
}

func (b *barrier) wait() {
	b.mu.Lock()
	b.n--
	if b.n == 0 {
		close(b.release)
	}
	b.mu.Unlock()
	<-b.release
}

type recordedOutcomes struct {
	mu        sync.Mutex
	subscribe []string
	validate  []string
}

func (r *recordedOutcomes) ObserveSubscribe(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribe = append(r.subscribe, result)
}

func (r *recordedOutcomes) ObserveValidate(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.validate = append(r.validate, result)
}

func course(price string) models.Course {
	return models.Course{
		ID:        uuid.New(),
		Title:     "Course " + price,
		Price:     decimal.RequireFromString(price),
		CreatedAt: time.Now().UTC(),
	}
}

func setupService(t *testing.T, courses ...models.Course) (*Service, *MockCourseRepo, *memLedger, *recordedOutcomes) {
	t.Helper()
	rule, err := promo.NewRule("BFSALE25", 50)
	require.NoError(t, err)

	repo := new(MockCourseRepo)
	for i := range courses {
		c := courses[i]
		repo.On("CourseByID", mock.Anything, c.ID).Return(&c, nil).Maybe()
	}
	repo.On("CourseByID", mock.Anything, mock.Anything).Return(nil, app_errors.ErrCourseNotFound).Maybe()

	led := newMemLedger(courses...)
	rec := &recordedOutcomes{}
	return NewService(logger.NewDiscard(), repo, led, rule, rec), repo, led, rec
}

func TestService_Subscribe_FreeCourse(t *testing.T) {
	free := course("0")
	svc, _, led, _ := setupService(t, free)
	userID := uuid.New()

	t.Run("no promo code needed", func(t *testing.T) {
		detail, err := svc.Subscribe(context.Background(), userID, free.ID.String(), "")
		require.NoError(t, err)
		sub := detail.Subscription
		assert.NotEqual(t, uuid.Nil, sub.ID)
		assert.True(t, sub.PricePaid.IsZero())
		assert.True(t, sub.OriginalPrice.IsZero())
		assert.Equal(t, 0, sub.DiscountApplied)
		assert.Nil(t, sub.PromoCodeUsed)
		assert.Equal(t, free.ID, detail.Course.ID)
	})

	t.Run("supplied promo is ignored", func(t *testing.T) {
		other := uuid.New()
		detail, err := svc.Subscribe(context.Background(), other, free.ID.String(), "BFSALE25")
		require.NoError(t, err)
		assert.Nil(t, detail.Subscription.PromoCodeUsed)
		assert.Equal(t, 0, detail.Subscription.DiscountApplied)
	})

	assert.Equal(t, 2, led.count())
}

func TestService_Subscribe_PaidCourse(t *testing.T) {
	paid := course("99.99")
	svc, _, led, rec := setupService(t, paid)
	ctx := context.Background()

	t.Run("missing promo is a bad request", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, uuid.New(), paid.ID.String(), "  ")
		require.ErrorIs(t, err, app_errors.ErrPromoCodeRequired)
	})

	t.Run("wrong promo is rejected", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, uuid.New(), paid.ID.String(), "WRONG")
		require.ErrorIs(t, err, app_errors.ErrInvalidPromo)
	})

	t.Run("lower case code applies the discount", func(t *testing.T) {
		detail, err := svc.Subscribe(ctx, uuid.New(), paid.ID.String(), "bfsale25")
		require.NoError(t, err)
		sub := detail.Subscription
		assert.True(t, decimal.RequireFromString("99.99").Equal(sub.OriginalPrice))
		assert.True(t, decimal.RequireFromString("50.00").Equal(sub.PricePaid), sub.PricePaid.String())
		assert.Equal(t, 50, sub.DiscountApplied)
		require.NotNil(t, sub.PromoCodeUsed)
		assert.Equal(t, "BFSALE25", *sub.PromoCodeUsed)
	})

	assert.Equal(t, 1, led.count(), "failed attempts must not write")
	assert.Equal(t, []string{"bad_request", "invalid_promo", "ok"}, rec.subscribe)
}

func TestService_Subscribe_Errors(t *testing.T) {
	paid := course("79.99")
	svc, _, led, _ := setupService(t, paid)
	ctx := context.Background()

	t.Run("missing course id", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, uuid.New(), "", "BFSALE25")
		require.ErrorIs(t, err, app_errors.ErrCourseIDRequired)
	})

	t.Run("malformed course id does not resolve", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, uuid.New(), "not-a-uuid", "BFSALE25")
		require.ErrorIs(t, err, app_errors.ErrCourseNotFound)
	})

	t.Run("unknown course", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, uuid.New(), uuid.NewString(), "BFSALE25")
		require.ErrorIs(t, err, app_errors.ErrCourseNotFound)
	})

	t.Run("catalog failure is internal", func(t *testing.T) {
		broken := uuid.New()
		dbErr := errors.New("connection reset")
		failing := new(MockCourseRepo)
		failing.On("CourseByID", mock.Anything, broken).Return(nil, dbErr).Once()
		rule, err := promo.NewRule("BFSALE25", 50)
		require.NoError(t, err)
		svc := NewService(logger.NewDiscard(), failing, led, rule, nil)

		_, err = svc.Subscribe(ctx, uuid.New(), broken.String(), "BFSALE25")
		require.ErrorIs(t, err, dbErr)
		assert.Equal(t, "internal", ResultLabel(err))
		failing.AssertExpectations(t)
	})

	assert.Equal(t, 0, led.count())
}

func TestService_Subscribe_TwiceInSuccession(t *testing.T) {
	paid := course("149.99")
	svc, _, led, _ := setupService(t, paid)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Subscribe(ctx, userID, paid.ID.String(), "BFSALE25")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.Subscription.ID)

	_, err = svc.Subscribe(ctx, userID, paid.ID.String(), "BFSALE25")
	require.ErrorIs(t, err, app_errors.ErrAlreadySubscribed)
	assert.Equal(t, 1, led.creates, "advisory check stops the second call before the insert")

	list, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, paid.ID, list[0].Course.ID)
}

func TestService_Subscribe_ConcurrentDuplicates(t *testing.T) {
	const callers = 8
	paid := course("59.99")
	svc, _, led, rec := setupService(t, paid)
	led.gate = newBarrier(callers)
	userID := uuid.New()

	var (
		mu        sync.Mutex
		successes int
		conflicts int
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			_, err := svc.Subscribe(ctx, userID, paid.ID.String(), "BFSALE25")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, app_errors.ErrAlreadySubscribed):
				conflicts++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 1, led.count())
	assert.Equal(t, callers, led.creates, "every caller passed the advisory check, the constraint decided")

	conflictLabels := 0
	for _, l := range rec.subscribe {
		if l == "conflict" {
			conflictLabels++
		}
	}
	assert.Equal(t, callers-1, conflictLabels)
}

func TestService_PriceInvariant(t *testing.T) {
	prices := []string{"0.01", "9.99", "59.99", "79.99", "89.99", "99.99", "149.99", "1000"}
	var courses []models.Course
	for _, p := range prices {
		courses = append(courses, course(p))
	}
	svc, _, _, _ := setupService(t, courses...)
	userID := uuid.New()

	for _, c := range courses {
		detail, err := svc.Subscribe(context.Background(), userID, c.ID.String(), "BFSALE25")
		require.NoError(t, err)
		sub := detail.Subscription

		factor := decimal.NewFromInt(int64(100 - sub.DiscountApplied)).Div(decimal.NewFromInt(100))
		want := sub.OriginalPrice.Mul(factor)
		assert.True(t, sub.PricePaid.Sub(want).Abs().LessThanOrEqual(decimal.RequireFromString("0.005")), "%s paid %s", c.Price, sub.PricePaid)
		assert.True(t, sub.PricePaid.LessThanOrEqual(sub.OriginalPrice))
	}
}

func TestService_Validate(t *testing.T) {
	paid := course("99.99")
	cheaper := course("79.99")
	svc, _, led, rec := setupService(t, paid, cheaper)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("quote for valid code", func(t *testing.T) {
		quote, err := svc.Validate(ctx, userID, paid.ID.String(), "BFSALE25")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("99.99").Equal(quote.OriginalPrice))
		assert.True(t, decimal.RequireFromString("50.00").Equal(quote.DiscountedPrice), quote.DiscountedPrice.String())
		assert.Equal(t, 50, quote.DiscountPercent)
		assert.True(t, decimal.RequireFromString("49.99").Equal(quote.Savings), quote.Savings.String())
	})

	t.Run("wrong code", func(t *testing.T) {
		quote, err := svc.Validate(ctx, userID, cheaper.ID.String(), "WRONG")
		require.ErrorIs(t, err, app_errors.ErrInvalidPromo)
		assert.Nil(t, quote)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := svc.Validate(ctx, userID, cheaper.ID.String(), "")
		require.ErrorIs(t, err, app_errors.ErrPromoCodeRequired)
	})

	t.Run("course checked before code", func(t *testing.T) {
		_, err := svc.Validate(ctx, userID, uuid.NewString(), "")
		require.ErrorIs(t, err, app_errors.ErrCourseNotFound)
		_, err = svc.Validate(ctx, userID, "", "BFSALE25")
		require.ErrorIs(t, err, app_errors.ErrCourseNotFound)
	})

	t.Run("side effect free", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			_, err := svc.Validate(ctx, userID, paid.ID.String(), "bfsale25")
			require.NoError(t, err)
		}
		subscribed, sub, err := svc.IsSubscribed(ctx, userID, paid.ID.String())
		require.NoError(t, err)
		assert.False(t, subscribed)
		assert.Nil(t, sub)
		assert.Equal(t, 0, led.count())
		assert.Equal(t, 0, led.creates)
	})

	t.Run("validated price matches the price paid", func(t *testing.T) {
		quote, err := svc.Validate(ctx, userID, paid.ID.String(), "BFSALE25")
		require.NoError(t, err)
		detail, err := svc.Subscribe(ctx, userID, paid.ID.String(), "BFSALE25")
		require.NoError(t, err)
		assert.True(t, quote.DiscountedPrice.Equal(detail.Subscription.PricePaid))
	})

	assert.Contains(t, rec.validate, "invalid_promo")
	assert.Contains(t, rec.validate, "ok")
}

func TestService_IsSubscribed(t *testing.T) {
	free := course("0")
	svc, _, _, _ := setupService(t, free)
	ctx := context.Background()
	userID := uuid.New()

	ok, _, err := svc.IsSubscribed(ctx, userID, "garbage")
	require.NoError(t, err)
	assert.False(t, ok)

	detail, err := svc.Subscribe(ctx, userID, free.ID.String(), "")
	require.NoError(t, err)

	ok, sub, err := svc.IsSubscribed(ctx, userID, free.ID.String())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, sub)
	assert.Equal(t, detail.Subscription.ID, sub.ID)

	ok, _, err = svc.IsSubscribed(ctx, uuid.New(), free.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestService_ListForUser_NewestFirst(t *testing.T) {
	a, b, c := course("0"), course("19.99"), course("0")
	svc, _, _, _ := setupService(t, a, b, c)
	ctx := context.Background()
	userID := uuid.New()

	for _, cr := range []models.Course{a, b, c} {
		_, err := svc.Subscribe(ctx, userID, cr.ID.String(), "BFSALE25")
		require.NoError(t, err)
	}

	list, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, c.ID, list[0].Course.ID)
	assert.Equal(t, a.ID, list[2].Course.ID)

	empty, err := svc.ListForUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

type failingLedger struct {
	*memLedger
	err error
}

func (f *failingLedger) Create(context.Context, *models.Subscription) (models.CreateOutcome, error) {
	return models.CreateOutcomeCreated, f.err
}

func TestService_Subscribe_LedgerFailure(t *testing.T) {
	free := course("0")
	rule, err := promo.NewRule("BFSALE25", 50)
	require.NoError(t, err)
	repo := new(MockCourseRepo)
	repo.On("CourseByID", mock.Anything, free.ID).Return(&free, nil)

	storageErr := errors.New("disk full")
	led := &failingLedger{memLedger: newMemLedger(free), err: storageErr}
	svc := NewService(logger.NewDiscard(), repo, led, rule, nil)

	_, err = svc.Subscribe(context.Background(), uuid.New(), free.ID.String(), "")
	require.ErrorIs(t, err, storageErr)
	assert.Equal(t, "internal", ResultLabel(err))
	repo.AssertExpectations(t)
}
