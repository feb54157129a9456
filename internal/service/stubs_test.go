package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories. They mirror the Postgres implementations'
// contracts: pgx.ErrNoRows for misses, the repository sentinels for
// conditional-update losses, and mutex-guarded conditional writes so
// concurrency tests exercise the same single-winner semantics.
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.User
	nextSeq int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func (r *stubUserRepo) newID(prefix string) string {
	r.nextSeq++
	return fmt.Sprintf("%s-%d", prefix, r.nextSeq)
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == "" {
		user.ID = r.newID("user")
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.byID[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.byID, id)
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubUserRepo) List(_ context.Context, role *domain.Role) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, u := range r.byID {
		if role != nil && u.Role != *role {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (r *stubUserRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, u := range r.byID {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

type stubServiceRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Service
	nextSeq int
}

func newStubServiceRepo() *stubServiceRepo {
	return &stubServiceRepo{byID: make(map[string]*domain.Service)}
}

func (r *stubServiceRepo) Create(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	svc.ID = fmt.Sprintf("svc-%d", r.nextSeq)
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	clone := *svc
	r.byID[svc.ID] = &clone
	return nil
}

func (r *stubServiceRepo) Update(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[svc.ID]; !ok {
		return pgx.ErrNoRows
	}
	svc.UpdatedAt = time.Now()
	clone := *svc
	r.byID[svc.ID] = &clone
	return nil
}

func (r *stubServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *svc
	return &clone, nil
}

func (r *stubServiceRepo) List(_ context.Context) ([]domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Service
	for _, svc := range r.byID {
		result = append(result, *svc)
	}
	return result, nil
}

func (r *stubServiceRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type stubRequestRepo struct {
	mu       sync.Mutex
	byID     map[string]*domain.ServiceRequest
	projects *stubProjectRepo
	nextSeq  int
}

func newStubRequestRepo(projects *stubProjectRepo) *stubRequestRepo {
	return &stubRequestRepo{byID: make(map[string]*domain.ServiceRequest), projects: projects}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	req.ID = fmt.Sprintf("req-%d", r.nextSeq)
	req.CreatedAt = time.Now()
	clone := *req
	r.byID[req.ID] = &clone
	return nil
}

func (r *stubRequestRepo) GetByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *req
	return &clone, nil
}

func (r *stubRequestRepo) List(_ context.Context) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ServiceRequest
	for _, req := range r.byID {
		result = append(result, *req)
	}
	return result, nil
}

func (r *stubRequestRepo) ListByClient(_ context.Context, clientID string) ([]domain.ServiceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ServiceRequest
	for _, req := range r.byID {
		if req.ClientID == clientID {
			result = append(result, *req)
		}
	}
	return result, nil
}

// Approve performs the decision and the project insert under one lock,
// matching the real transaction's both-or-neither behavior.
func (r *stubRequestRepo) Approve(_ context.Context, requestID string, project *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.Status != domain.RequestStatusPending {
		return repository.ErrNotPending
	}
	now := time.Now()
	req.Status = domain.RequestStatusApproved
	req.DecidedAt = &now
	r.projects.insert(project)
	return nil
}

func (r *stubRequestRepo) Reject(_ context.Context, requestID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.byID[requestID]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.Status != domain.RequestStatusPending {
		return repository.ErrNotPending
	}
	now := time.Now()
	req.Status = domain.RequestStatusRejected
	req.DecidedAt = &now
	return nil
}

func (r *stubRequestRepo) CountByStatus(_ context.Context, status domain.RequestStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, req := range r.byID {
		if req.Status == status {
			count++
		}
	}
	return count, nil
}

type stubProjectRepo struct {
	mu      sync.Mutex
	byID    map[string]*domain.Project
	nextSeq int
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: make(map[string]*domain.Project)}
}

func (r *stubProjectRepo) insert(project *domain.Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	project.ID = fmt.Sprintf("proj-%d", r.nextSeq)
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	clone := *project
	clone.EmployeeIDs = append([]string{}, project.EmployeeIDs...)
	r.byID[project.ID] = &clone
}

func (r *stubProjectRepo) get(id string) (*domain.Project, bool) {
	p, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	clone := *p
	clone.EmployeeIDs = append([]string{}, p.EmployeeIDs...)
	return &clone, true
}

func (r *stubProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.get(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

func (r *stubProjectRepo) List(_ context.Context) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Project
	for id := range r.byID {
		p, _ := r.get(id)
		result = append(result, *p)
	}
	return result, nil
}

func (r *stubProjectRepo) ListByClient(_ context.Context, clientID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Project
	for id, p := range r.byID {
		if p.ClientID == clientID {
			clone, _ := r.get(id)
			result = append(result, *clone)
		}
	}
	return result, nil
}

func (r *stubProjectRepo) ListByEmployee(_ context.Context, employeeID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Project
	for id, p := range r.byID {
		if p.HasEmployee(employeeID) {
			clone, _ := r.get(id)
			result = append(result, *clone)
		}
	}
	return result, nil
}

func (r *stubProjectRepo) AddEmployee(_ context.Context, projectID, employeeID string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[projectID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if p.HasEmployee(employeeID) {
		return nil, repository.ErrAlreadyAssigned
	}
	p.EmployeeIDs = append(p.EmployeeIDs, employeeID)
	p.UpdatedAt = time.Now()
	clone, _ := r.get(projectID)
	return clone, nil
}

func (r *stubProjectRepo) RemoveEmployee(_ context.Context, projectID, employeeID string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[projectID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	kept := p.EmployeeIDs[:0]
	for _, id := range p.EmployeeIDs {
		if id != employeeID {
			kept = append(kept, id)
		}
	}
	p.EmployeeIDs = kept
	p.UpdatedAt = time.Now()
	clone, _ := r.get(projectID)
	return clone, nil
}

func (r *stubProjectRepo) SetStatus(_ context.Context, projectID string, status domain.ProjectStatus) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[projectID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	clone, _ := r.get(projectID)
	return clone, nil
}

func (r *stubProjectRepo) SetStatusIf(_ context.Context, projectID string, expect, status domain.ProjectStatus) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[projectID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if p.Status != expect {
		return nil, repository.ErrStatusChanged
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	clone, _ := r.get(projectID)
	return clone, nil
}

func (r *stubProjectRepo) HasActiveForUser(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.Status == domain.ProjectStatusCompleted {
			continue
		}
		if p.ClientID == userID || p.HasEmployee(userID) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProjectRepo) HasAnyForClient(_ context.Context, clientID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if p.ClientID == clientID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProjectRepo) RemoveEmployeeEverywhere(_ context.Context, employeeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		kept := p.EmployeeIDs[:0]
		for _, id := range p.EmployeeIDs {
			if id != employeeID {
				kept = append(kept, id)
			}
		}
		p.EmployeeIDs = kept
	}
	return nil
}

func (r *stubProjectRepo) CountByStatus(_ context.Context, status domain.ProjectStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, p := range r.byID {
		if p.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *stubProjectRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}

type stubMessageRepo struct {
	mu       sync.Mutex
	messages []domain.Message
	nextSeq  int
}

func newStubMessageRepo() *stubMessageRepo {
	return &stubMessageRepo{}
}

func (r *stubMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	msg.ID = fmt.Sprintf("msg-%d", r.nextSeq)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *stubMessageRepo) ListForUser(_ context.Context, userID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.RecipientID == userID {
			result = append(result, m)
		}
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Principal helpers
// ---------------------------------------------------------------------------

func principalFor(user *domain.User) *auth.Principal {
	return &auth.Principal{SessionID: "sess-" + user.ID, User: user, Role: user.Role}
}

func seedUser(repo *stubUserRepo, id, name string, role domain.Role) *domain.User {
	u := &domain.User{
		ID:    id,
		Name:  name,
		Email: id + "@example.com",
		Role:  role,
	}
	_ = repo.Create(context.Background(), u)
	return u
}
