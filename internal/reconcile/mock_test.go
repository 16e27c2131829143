package reconcile

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/mrr-sync/pkg/canny"
)

// mockUpdater is a mock type for the Updater interface.
type mockUpdater struct {
	mock.Mock
}

func (m *mockUpdater) UpdateCompany(ctx context.Context, company canny.Company) error {
	ret := m.Called(ctx, company)
	return ret.Error(0)
}

// mockNotifier is a mock type for the Notifier interface.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, text string) error {
	ret := m.Called(ctx, text)
	return ret.Error(0)
}

// mockSlack is a mock type for the slack.Client interface.
type mockSlack struct {
	mock.Mock
}

func (m *mockSlack) PostMessage(ctx context.Context, channel, text, username string) (string, error) {
	ret := m.Called(ctx, channel, text, username)
	return ret.String(0), ret.Error(1)
}
