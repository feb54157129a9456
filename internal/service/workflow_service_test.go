package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-desk/internal/config"
	"github.com/spec-kit/project-desk/internal/domain"
	"github.com/spec-kit/project-desk/internal/events"
	apperrors "github.com/spec-kit/project-desk/pkg/util"
)

type workflowFixture struct {
	users    *stubUserRepo
	services *stubServiceRepo
	requests *stubRequestRepo
	projects *stubProjectRepo
	workflow *WorkflowService

	admin    *domain.User
	client   *domain.User
	employee *domain.User
}

func newWorkflowFixture(t *testing.T, strict bool) *workflowFixture {
	t.Helper()
	users := newStubUserRepo()
	services := newStubServiceRepo()
	projects := newStubProjectRepo()
	requests := newStubRequestRepo(projects)

	f := &workflowFixture{
		users:    users,
		services: services,
		requests: requests,
		projects: projects,
		workflow: NewWorkflowService(config.WorkflowConfig{StrictStatusOrder: strict}, WorkflowDependencies{
			RequestRepo: requests,
			ProjectRepo: projects,
			ServiceRepo: services,
			UserRepo:    users,
			Dispatcher:  events.NewInMemoryDispatcher(),
		}),
		admin:    seedUser(users, "admin-1", "Ada Admin", domain.RoleAdmin),
		client:   seedUser(users, "client-1", "Cleo Client", domain.RoleClient),
		employee: seedUser(users, "emp-1", "Evan Employee", domain.RoleEmployee),
	}
	return f
}

func (f *workflowFixture) seedService(t *testing.T, name string) *domain.Service {
	t.Helper()
	svc := &domain.Service{Name: name, Description: "desc"}
	require.NoError(t, f.services.Create(context.Background(), svc))
	return svc
}

func (f *workflowFixture) submitRequest(t *testing.T, svc *domain.Service) *domain.ServiceRequest {
	t.Helper()
	req, err := f.workflow.SubmitRequest(context.Background(), principalFor(f.client), svc.ID, "please")
	require.NoError(t, err)
	return req
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestSubmitRequest(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	ctx := context.Background()

	req, err := f.workflow.SubmitRequest(ctx, principalFor(f.client), svc.ID, "  please  ")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)
	assert.Equal(t, "Web Design", req.ServiceName)
	assert.Equal(t, f.client.ID, req.ClientID)
	assert.Equal(t, "please", req.Message)
	assert.Nil(t, req.DecidedAt)
}

func TestSubmitRequest_UnknownService(t *testing.T) {
	f := newWorkflowFixture(t, true)

	_, err := f.workflow.SubmitRequest(context.Background(), principalFor(f.client), "svc-missing", "")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestSubmitRequest_NonClientForbidden(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")

	_, err := f.workflow.SubmitRequest(context.Background(), principalFor(f.employee), svc.ID, "")
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestSubmitRequest_NameSnapshotSurvivesCatalogEdit(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)

	svc.Name = "Web Design v2"
	require.NoError(t, f.services.Update(context.Background(), svc))

	stored, err := f.requests.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Web Design", stored.ServiceName)
}

func TestApproveRequest_CreatesProject(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Project - Web Design", project.Name)
	assert.Equal(t, domain.ProjectStatusNotStarted, project.Status)
	assert.Equal(t, req.ID, project.ServiceRequestID)
	assert.Equal(t, f.client.ID, project.ClientID)
	assert.Empty(t, project.EmployeeIDs)

	stored, err := f.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, stored.Status)
	assert.NotNil(t, stored.DecidedAt)

	count, err := f.projects.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestApproveRequest_AlreadyDecided(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	_, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)

	_, err = f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	_, err = f.workflow.RejectRequest(ctx, principalFor(f.admin), req.ID)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	count, err := f.projects.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestApproveRequest_NotFound(t *testing.T) {
	f := newWorkflowFixture(t, true)

	_, err := f.workflow.ApproveRequest(context.Background(), principalFor(f.admin), "req-missing")
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestApproveRequest_NonAdminForbidden(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)

	_, err := f.workflow.ApproveRequest(context.Background(), principalFor(f.client), req.ID)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestApproveRequest_ConcurrentSingleWinner(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	count, err := f.projects.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRejectRequest(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	rejected, err := f.workflow.RejectRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, rejected.Status)
	assert.NotNil(t, rejected.DecidedAt)

	count, err := f.projects.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	_, err = f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))
}

func TestListRequests_Scoping(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	other := seedUser(f.users, "client-2", "Carl Client", domain.RoleClient)
	ctx := context.Background()

	f.submitRequest(t, svc)
	_, err := f.workflow.SubmitRequest(ctx, principalFor(other), svc.ID, "")
	require.NoError(t, err)

	all, err := f.workflow.ListRequests(ctx, principalFor(f.admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := f.workflow.ListRequests(ctx, principalFor(f.client))
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.client.ID, own[0].ClientID)

	_, err = f.workflow.ListRequests(ctx, principalFor(f.employee))
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestAssignEmployee(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)

	updated, err := f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasEmployee(f.employee.ID))

	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	assert.Equal(t, "ALREADY_ASSIGNED", errCode(t, err))

	again, err := f.projects.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, again.EmployeeIDs, 1)
}

func TestAssignEmployee_TargetMustBeEmployee(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)

	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.client.ID)
	assert.Equal(t, "UNKNOWN_EMPLOYEE", errCode(t, err))

	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, "nobody")
	assert.Equal(t, "UNKNOWN_EMPLOYEE", errCode(t, err))
}

func TestAssignEmployee_ProjectNotFound(t *testing.T) {
	f := newWorkflowFixture(t, true)

	_, err := f.workflow.AssignEmployee(context.Background(), principalFor(f.admin), "proj-missing", f.employee.ID)
	assert.Equal(t, "NOT_FOUND", errCode(t, err))
}

func TestUnassignEmployee_AbsentIsNoop(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)

	updated, err := f.workflow.UnassignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.EmployeeIDs)
	assert.Equal(t, domain.ProjectStatusNotStarted, updated.Status)
}

func TestUpdateProjectStatus_AssignedEmployeeAdvances(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)
	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)

	updated, err := f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusInProgress, updated.Status)

	updated, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, updated.Status)
}

func TestUpdateProjectStatus_NotAssignedForbidden(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)

	other := seedUser(f.users, "emp-2", "Olive Other", domain.RoleEmployee)
	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(other), project.ID, domain.ProjectStatusInProgress)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))
}

func TestUpdateProjectStatus_StrictForwardOnly(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)
	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)

	// skipping IN_PROGRESS is not a forward step
	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusCompleted)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusInProgress)
	require.NoError(t, err)

	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusNotStarted)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))

	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusCompleted)
	require.NoError(t, err)

	// COMPLETED is terminal
	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusInProgress)
	assert.Equal(t, "INVALID_TRANSITION", errCode(t, err))
}

func TestUpdateProjectStatus_PermissiveAllowsAnyValue(t *testing.T) {
	f := newWorkflowFixture(t, false)
	svc := f.seedService(t, "Web Design")
	req := f.submitRequest(t, svc)
	ctx := context.Background()

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)
	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)

	updated, err := f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, updated.Status)

	updated, err = f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusNotStarted)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusNotStarted, updated.Status)
}

func TestUpdateProjectStatus_InvalidValue(t *testing.T) {
	f := newWorkflowFixture(t, true)

	_, err := f.workflow.UpdateProjectStatus(context.Background(), principalFor(f.employee), "proj-1", domain.ProjectStatus("ARCHIVED"))
	assert.Equal(t, "VALIDATION_FAILED", errCode(t, err))
}

func TestListProjects_Scoping(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "Web Design")
	other := seedUser(f.users, "client-2", "Carl Client", domain.RoleClient)
	ctx := context.Background()

	req1 := f.submitRequest(t, svc)
	req2, err := f.workflow.SubmitRequest(ctx, principalFor(other), svc.ID, "")
	require.NoError(t, err)

	proj1, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req1.ID)
	require.NoError(t, err)
	_, err = f.workflow.ApproveRequest(ctx, principalFor(f.admin), req2.ID)
	require.NoError(t, err)
	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), proj1.ID, f.employee.ID)
	require.NoError(t, err)

	all, err := f.workflow.ListProjects(ctx, principalFor(f.admin))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	owned, err := f.workflow.ListProjects(ctx, principalFor(f.client))
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, f.client.ID, owned[0].ClientID)

	assigned, err := f.workflow.ListProjects(ctx, principalFor(f.employee))
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, proj1.ID, assigned[0].ID)
}

func TestRequestLifecycleEndToEnd(t *testing.T) {
	f := newWorkflowFixture(t, true)
	svc := f.seedService(t, "SEO Audit")
	ctx := context.Background()

	req, err := f.workflow.SubmitRequest(ctx, principalFor(f.client), svc.ID, "need website")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, req.Status)

	project, err := f.workflow.ApproveRequest(ctx, principalFor(f.admin), req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Project - SEO Audit", project.Name)
	assert.Equal(t, domain.ProjectStatusNotStarted, project.Status)
	assert.Empty(t, project.EmployeeIDs)

	assigned, err := f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.employee.ID}, assigned.EmployeeIDs)

	_, err = f.workflow.AssignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	assert.Equal(t, "ALREADY_ASSIGNED", errCode(t, err))

	started, err := f.workflow.UpdateProjectStatus(ctx, principalFor(f.employee), project.ID, domain.ProjectStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusInProgress, started.Status)

	outsider := seedUser(f.users, "emp-2", "Enid Outsider", domain.RoleEmployee)
	_, err = f.workflow.UpdateProjectStatus(ctx, principalFor(outsider), project.ID, domain.ProjectStatusCompleted)
	assert.Equal(t, "FORBIDDEN", errCode(t, err))

	// unassigning never touches status
	cleared, err := f.workflow.UnassignEmployee(ctx, principalFor(f.admin), project.ID, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.EmployeeIDs)
	assert.Equal(t, domain.ProjectStatusInProgress, cleared.Status)

	owned, err := f.workflow.ListProjects(ctx, principalFor(f.client))
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, domain.ProjectStatusInProgress, owned[0].Status)
}
