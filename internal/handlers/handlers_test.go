package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge-dev/taskforge/db"
	"github.com/taskforge-dev/taskforge/internal/auth"
	"github.com/taskforge-dev/taskforge/internal/models"
	"github.com/taskforge-dev/taskforge/internal/rbac"
	"github.com/taskforge-dev/taskforge/internal/router"
	"github.com/taskforge-dev/taskforge/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupServer(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "handler-test-secret")
	require.NoError(t, auth.InitJWTSecret())

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.AuditLog{},
	))

	require.NoError(t, rbac.Seed(testDB, logger.Nop()))

	db.DB = testDB

	return router.NewRouter(logger.Nop())
}

// seedUser creates a user with the given legacy role, assigns the named
// RBAC roles, and returns the user with a signed access token.
func seedUser(t *testing.T, email, legacyRole string, rbacRoles ...string) (models.User, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:         email,
		Email:        email,
		PasswordHash: string(hash),
		Role:         legacyRole,
	}
	require.NoError(t, db.DB.Create(&user).Error)

	tokenRoles := []string{legacyRole}

	for _, roleName := range rbacRoles {
		var role models.Role
		require.NoError(t, db.DB.Where("name = ?", roleName).First(&role).Error)
		require.NoError(t, db.DB.Create(&models.UserRole{UserID: user.ID, RoleID: role.ID}).Error)

		if roleName != legacyRole {
			tokenRoles = append(tokenRoles, roleName)
		}
	}

	token, err := auth.GenerateAccessToken(user.ID, user.Email, tokenRoles)
	require.NoError(t, err)

	return user, token
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestTaskOwnershipScenario(t *testing.T) {
	r := setupServer(t)

	alice, aliceToken := seedUser(t, "alice@example.com", "user", rbac.RoleUser)
	_, bobToken := seedUser(t, "bob@example.com", "user", rbac.RoleUser)
	_, rootToken := seedUser(t, "root@example.com", "admin", rbac.RoleAdmin)

	w := doRequest(t, r, http.MethodPost, "/api/tasks", aliceToken, gin.H{"title": "Task #1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID     uint   `json:"id"`
		UserID uint   `json:"user_id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, alice.ID, created.UserID)
	assert.Equal(t, models.TaskStatusPending, created.Status)

	taskPath := fmt.Sprintf("/api/tasks/%d", created.ID)

	// Bob holds the global task:update permission but does not own the
	// task: the guard passes, the ownership gate denies.
	w = doRequest(t, r, http.MethodPatch, taskPath, bobToken, gin.H{"title": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodPatch, taskPath, rootToken, gin.H{"title": "triaged"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPatch, taskPath, aliceToken, gin.H{"status": models.TaskStatusInProgress})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodDelete, taskPath, bobToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, taskPath, rootToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSingleTaskReadHasNoOwnershipGate(t *testing.T) {
	r := setupServer(t)

	_, aliceToken := seedUser(t, "alice@example.com", "user", rbac.RoleUser)
	_, bobToken := seedUser(t, "bob@example.com", "user", rbac.RoleUser)

	w := doRequest(t, r, http.MethodPost, "/api/tasks", aliceToken, gin.H{"title": "readable"})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doRequest(t, r, http.MethodGet, fmt.Sprintf("/api/tasks/%d", created.ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskListScopedToOwnerUnlessAdmin(t *testing.T) {
	r := setupServer(t)

	_, aliceToken := seedUser(t, "alice@example.com", "user", rbac.RoleUser)
	_, bobToken := seedUser(t, "bob@example.com", "user", rbac.RoleUser)
	_, rootToken := seedUser(t, "root@example.com", "admin", rbac.RoleAdmin)

	for i := 0; i < 2; i++ {
		w := doRequest(t, r, http.MethodPost, "/api/tasks", aliceToken, gin.H{"title": fmt.Sprintf("alice %d", i)})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doRequest(t, r, http.MethodPost, "/api/tasks", bobToken, gin.H{"title": "bob"})
	require.Equal(t, http.StatusCreated, w.Code)

	var tasks []json.RawMessage

	w = doRequest(t, r, http.MethodGet, "/api/tasks", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)

	w = doRequest(t, r, http.MethodGet, "/api/tasks", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 3)
}

func TestProjectMemberRoles(t *testing.T) {
	r := setupServer(t)

	// Everyone here holds the global manager role so the permission gate
	// passes uniformly and only the ownership policy differs.
	_, ownerToken := seedUser(t, "owner@example.com", "user", rbac.RoleManager)
	managerUser, managerToken := seedUser(t, "manager@example.com", "user", rbac.RoleManager)
	memberUser, memberToken := seedUser(t, "member@example.com", "user", rbac.RoleManager)
	_, outsideToken := seedUser(t, "outside@example.com", "user", rbac.RoleManager)

	w := doRequest(t, r, http.MethodPost, "/api/projects", ownerToken, gin.H{"name": "Apollo"})
	require.Equal(t, http.StatusCreated, w.Code)

	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))
	projectPath := fmt.Sprintf("/api/projects/%d", project.ID)

	// Membership changes go through the global manager role since plain
	// users lack project:manage_members; seed rows directly instead.
	require.NoError(t, db.DB.Create(&models.ProjectMember{
		ProjectID: project.ID, UserID: managerUser.ID, Role: models.ProjectRoleManager,
	}).Error)
	require.NoError(t, db.DB.Create(&models.ProjectMember{
		ProjectID: project.ID, UserID: memberUser.ID, Role: models.ProjectRoleMember,
	}).Error)

	// MANAGER member: update yes, delete no.
	w = doRequest(t, r, http.MethodPatch, projectPath, managerToken, gin.H{"name": "Apollo 11"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodDelete, projectPath, managerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Plain MEMBER: read yes, update no.
	w = doRequest(t, r, http.MethodGet, projectPath, memberToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodPatch, projectPath, memberToken, gin.H{"name": "nope"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Owner: all three.
	w = doRequest(t, r, http.MethodPatch, projectPath, ownerToken, gin.H{"description": "moon"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, r, http.MethodGet, projectPath+"/members", ownerToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Not the owner and not a member: no access at all.
	w = doRequest(t, r, http.MethodGet, projectPath, outsideToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(t, r, http.MethodDelete, projectPath, ownerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestProjectListUnionOfOwnershipAndMembership(t *testing.T) {
	r := setupServer(t)

	_, ownerToken := seedUser(t, "owner@example.com", "user", rbac.RoleManager)
	memberUser, memberToken := seedUser(t, "member@example.com", "user", rbac.RoleManager)
	_, rootToken := seedUser(t, "root@example.com", "admin", rbac.RoleAdmin)

	w := doRequest(t, r, http.MethodPost, "/api/projects", ownerToken, gin.H{"name": "first"})
	require.Equal(t, http.StatusCreated, w.Code)

	var first struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	w = doRequest(t, r, http.MethodPost, "/api/projects", ownerToken, gin.H{"name": "second"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/projects", memberToken, gin.H{"name": "own"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, db.DB.Create(&models.ProjectMember{
		ProjectID: first.ID, UserID: memberUser.ID, Role: models.ProjectRoleMember,
	}).Error)

	var projects []json.RawMessage

	// Member sees owned plus joined, not the unrelated second project.
	w = doRequest(t, r, http.MethodGet, "/api/projects", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	assert.Len(t, projects, 2)

	w = doRequest(t, r, http.MethodGet, "/api/projects", rootToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projects))
	assert.Len(t, projects, 3)
}

func TestAddMemberConflictsAndValidation(t *testing.T) {
	r := setupServer(t)

	_, managerToken := seedUser(t, "lead@example.com", "user", rbac.RoleManager)
	target, _ := seedUser(t, "target@example.com", "user", rbac.RoleUser)

	w := doRequest(t, r, http.MethodPost, "/api/projects", managerToken, gin.H{"name": "staffed"})
	require.Equal(t, http.StatusCreated, w.Code)

	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))
	membersPath := fmt.Sprintf("/api/projects/%d/members", project.ID)

	w = doRequest(t, r, http.MethodPost, membersPath, managerToken, gin.H{"user_id": target.ID})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Adding the same user again is a conflict, not a silent duplicate.
	w = doRequest(t, r, http.MethodPost, membersPath, managerToken, gin.H{"user_id": target.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(t, r, http.MethodPost, membersPath, managerToken, gin.H{"user_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodPost, membersPath, managerToken, gin.H{"user_id": target.ID, "role": "OVERLORD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddMemberValidatesTargetBeforeActorAccess(t *testing.T) {
	r := setupServer(t)

	_, ownerToken := seedUser(t, "owner@example.com", "user", rbac.RoleManager)
	member, _ := seedUser(t, "member@example.com", "user", rbac.RoleUser)
	stranger, strangerToken := seedUser(t, "stranger@example.com", "user", rbac.RoleManager)

	w := doRequest(t, r, http.MethodPost, "/api/projects", ownerToken, gin.H{"name": "guarded"})
	require.Equal(t, http.StatusCreated, w.Code)

	var project struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &project))
	membersPath := fmt.Sprintf("/api/projects/%d/members", project.ID)

	w = doRequest(t, r, http.MethodPost, membersPath, ownerToken, gin.H{"user_id": member.ID})
	require.Equal(t, http.StatusCreated, w.Code)

	// The stranger passes the global permission gate but is neither owner
	// nor MANAGER of this project. Target validation still runs first.
	w = doRequest(t, r, http.MethodPost, membersPath, strangerToken, gin.H{"user_id": 9999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodPost, membersPath, strangerToken, gin.H{"user_id": member.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Only a valid, not-yet-member target reaches the access check.
	w = doRequest(t, r, http.MethodPost, membersPath, strangerToken, gin.H{"user_id": stranger.ID})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRemoveMemberRequiresMatchingProject(t *testing.T) {
	r := setupServer(t)

	_, managerToken := seedUser(t, "lead@example.com", "user", rbac.RoleManager)
	target, _ := seedUser(t, "target@example.com", "user", rbac.RoleUser)

	w := doRequest(t, r, http.MethodPost, "/api/projects", managerToken, gin.H{"name": "one"})
	require.Equal(t, http.StatusCreated, w.Code)
	var projectOne struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projectOne))

	w = doRequest(t, r, http.MethodPost, "/api/projects", managerToken, gin.H{"name": "two"})
	require.Equal(t, http.StatusCreated, w.Code)
	var projectTwo struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &projectTwo))

	member := models.ProjectMember{ProjectID: projectOne.ID, UserID: target.ID, Role: models.ProjectRoleMember}
	require.NoError(t, db.DB.Create(&member).Error)

	// A membership row from another project is NotFound, never removed.
	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/projects/%d/members/%d", projectTwo.ID, member.ID), managerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/projects/%d/members/%d", projectOne.ID, member.ID), managerToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRefreshReusesTokenRolesWithoutReResolving(t *testing.T) {
	r := setupServer(t)

	user, _ := seedUser(t, "refresh@example.com", "user", rbac.RoleManager)

	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.Email, []string{"user", "manager"})
	require.NoError(t, err)

	// Revoke the role after the refresh token was issued.
	require.NoError(t, db.DB.Where("user_id = ?", user.ID).Delete(&models.UserRole{}).Error)

	w := doRequest(t, r, http.MethodPost, "/api/auth/refresh", "", gin.H{"refresh_token": refreshToken})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	claims, err := auth.VerifyToken(response.AccessToken)
	require.NoError(t, err)

	// The stale claim is carried forward until the refresh token expires.
	assert.Contains(t, claims.Roles, "manager")
}

func TestTokenClaimsOmitEmptyLegacyRole(t *testing.T) {
	r := setupServer(t)

	user, _ := seedUser(t, "blank@example.com", "user", rbac.RoleUser)
	require.NoError(t, db.DB.Model(&user).UpdateColumn("role", "").Error)

	w := doRequest(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email":    user.Email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	claims, err := auth.VerifyToken(response.AccessToken)
	require.NoError(t, err)

	assert.NotContains(t, claims.Roles, "")
	assert.Contains(t, claims.Roles, rbac.RoleUser)
}

func TestRoleAdministrationEndpoints(t *testing.T) {
	r := setupServer(t)

	_, rootToken := seedUser(t, "root@example.com", "admin", rbac.RoleAdmin)
	target, _ := seedUser(t, "target@example.com", "user")

	var role models.Role
	require.NoError(t, db.DB.Where("name = ?", rbac.RoleManager).First(&role).Error)

	assignPath := fmt.Sprintf("/api/users/%d/roles/%d", target.ID, role.ID)

	w := doRequest(t, r, http.MethodPost, assignPath, rootToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Idempotent: repeating the assignment succeeds and keeps one row.
	w = doRequest(t, r, http.MethodPost, assignPath, rootToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.DB.Model(&models.UserRole{}).Where("user_id = ? AND role_id = ?", target.ID, role.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	w = doRequest(t, r, http.MethodDelete, assignPath, rootToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Strict delete: removing a missing assignment is NotFound.
	w = doRequest(t, r, http.MethodDelete, assignPath, rootToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A plain user lacks user:manage_roles entirely.
	_, plainToken := seedUser(t, "plain@example.com", "user", rbac.RoleUser)
	w = doRequest(t, r, http.MethodPost, assignPath, plainToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	r := setupServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/tasks", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
