package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ais-api/internal/models"
	appErrors "github.com/noah-isme/ais-api/pkg/errors"
)

type clientRepoMock struct {
	clients     map[string]*models.Client
	emailTaken  bool
	deactivated []string
}

func newClientRepoMock(clients ...*models.Client) *clientRepoMock {
	m := &clientRepoMock{clients: map[string]*models.Client{}}
	for _, client := range clients {
		m.clients[client.ID] = client
	}
	return m
}

func (m *clientRepoMock) List(ctx context.Context, teacherID string, filter models.ClientFilter) ([]models.Client, int, error) {
	var out []models.Client
	for _, client := range m.clients {
		if client.TeacherID == teacherID {
			out = append(out, *client)
		}
	}
	return out, len(out), nil
}

func (m *clientRepoMock) FindByID(ctx context.Context, id string) (*models.Client, error) {
	client, ok := m.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *client
	return &copied, nil
}

func (m *clientRepoMock) ExistsByEmail(ctx context.Context, teacherID, email, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *clientRepoMock) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = "client-new"
	}
	copied := *client
	m.clients[client.ID] = &copied
	return nil
}

func (m *clientRepoMock) Update(ctx context.Context, client *models.Client) error {
	copied := *client
	m.clients[client.ID] = &copied
	return nil
}

func (m *clientRepoMock) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if client, ok := m.clients[id]; ok {
		client.Active = false
	}
	return nil
}

func TestClientServiceCreate(t *testing.T) {
	repo := newClientRepoMock()
	svc := NewClientService(repo, nil, nil)

	email := "anna@example.com"
	client, err := svc.Create(context.Background(), "teacher-1", CreateClientRequest{
		FullName: "Anna K",
		Email:    &email,
		VIP:      true,
	})
	require.NoError(t, err)
	require.True(t, client.Active)
	require.True(t, client.VIP)
	require.Equal(t, "teacher-1", client.TeacherID)
}

func TestClientServiceCreateDuplicateEmail(t *testing.T) {
	repo := newClientRepoMock()
	repo.emailTaken = true
	svc := NewClientService(repo, nil, nil)

	email := "anna@example.com"
	_, err := svc.Create(context.Background(), "teacher-1", CreateClientRequest{FullName: "Anna K", Email: &email})

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestClientServiceGetRejectsForeignClient(t *testing.T) {
	repo := newClientRepoMock(&models.Client{ID: "client-1", TeacherID: "teacher-2", FullName: "Boris M"})
	svc := NewClientService(repo, nil, nil)

	_, err := svc.Get(context.Background(), "teacher-1", "client-1")

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestClientServiceUpdatePartial(t *testing.T) {
	repo := newClientRepoMock(&models.Client{ID: "client-1", TeacherID: "teacher-1", FullName: "Boris M", Active: true})
	svc := NewClientService(repo, nil, nil)

	vip := true
	updated, err := svc.Update(context.Background(), "teacher-1", "client-1", UpdateClientRequest{VIP: &vip})
	require.NoError(t, err)
	require.True(t, updated.VIP)
	require.Equal(t, "Boris M", updated.FullName)
}

func TestClientServiceDeleteSoftDeletes(t *testing.T) {
	repo := newClientRepoMock(&models.Client{ID: "client-1", TeacherID: "teacher-1", FullName: "Boris M", Active: true})
	svc := NewClientService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "teacher-1", "client-1"))
	require.Equal(t, []string{"client-1"}, repo.deactivated)
	require.False(t, repo.clients["client-1"].Active)
}
