package test_utils

import (
	"context"
	"time"

	"github.com/centavo/centavo/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewTestUser inserts a user row with sane default settings and returns it
// together with a context carrying it, so repositories under test can satisfy
// the users foreign key the same way request handlers do.
func NewTestUser(ctx context.Context, db *pgxpool.Pool, username string) (user.User, context.Context, error) {
	u := user.User{
		Uid:         uuid.NewString(),
		Username:    username,
		DisplayName: username,
		Settings: user.Settings{
			Timezone:        "UTC",
			Locale:          "en-US",
			WeekFirstDay:    time.Monday,
			PrimaryCurrency: "USD",
			Onboarding:      user.OnboardingDone,
		},
	}
	id, err := user.NewUserRepo(db).CreateUser(ctx, u)
	if err != nil {
		return user.User{}, ctx, err
	}
	u.Id = id
	return u, user.WithUser(ctx, u), nil
}
