package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stock-ledger/internal/application/auth"
	"github.com/tu-usuario/stock-ledger/internal/application/dto"
	"github.com/tu-usuario/stock-ledger/internal/domain"
	"github.com/tu-usuario/stock-ledger/internal/domain/entity"
	"github.com/tu-usuario/stock-ledger/pkg/jwt"
)

const tenant = "tenant-1"

// fakeUserRepo usuarios en memoria, indexados por email.
type fakeUserRepo struct {
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	copied := *u
	r.users[u.Email] = &copied
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if u, ok := r.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByEmailAndTenant(_ context.Context, email, tenantID string) (*entity.User, error) {
	if u, ok := r.users[email]; ok && u.TenantID == tenantID {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func newUseCase() (*auth.UseCase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	uc := auth.NewUseCase(repo, auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "stock-ledger-test"})
	return uc, repo
}

func TestRegister_CreaUsuarioConPasswordHasheado(t *testing.T) {
	uc, repo := newUseCase()

	resp, err := uc.Register(context.Background(), dto.RegisterRequest{
		TenantID: tenant,
		Email:    "ana@acme.com",
		Password: "secreto123",
		Name:     "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", resp.Name)
	assert.Equal(t, entity.RoleOperator, resp.Role, "sin rol explícito el default es operator")
	assert.Equal(t, "active", resp.Status)

	stored := repo.users["ana@acme.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto123", stored.PasswordHash, "el password nunca se guarda en claro")
}

func TestRegister_EmailDuplicadoEnElTenant(t *testing.T) {
	uc, _ := newUseCase()
	req := dto.RegisterRequest{TenantID: tenant, Email: "ana@acme.com", Password: "secreto123"}

	_, err := uc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = uc.Register(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegister_CamposObligatorios(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{TenantID: tenant, Email: "ana@acme.com"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_TokenConClaimsDelUsuario(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		TenantID: tenant, Email: "ana@acme.com", Password: "secreto123", Name: "Ana", Role: entity.RoleAdmin,
	})
	require.NoError(t, err)

	resp, err := uc.Login(context.Background(), dto.LoginRequest{Email: "ana@acme.com", Password: "secreto123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := jwt.Parse("test-secret", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, tenant, claims.TenantID)
	assert.Equal(t, "Ana", claims.UserName)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	uc, _ := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		TenantID: tenant, Email: "ana@acme.com", Password: "secreto123",
	})
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@acme.com", Password: "incorrecto"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@acme.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivoRechazado(t *testing.T) {
	uc, repo := newUseCase()
	_, err := uc.Register(context.Background(), dto.RegisterRequest{
		TenantID: tenant, Email: "ana@acme.com", Password: "secreto123",
	})
	require.NoError(t, err)
	repo.users["ana@acme.com"].Status = "disabled"

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@acme.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
