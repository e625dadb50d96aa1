package address

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neoaplicacoes/customer-api/internal/types"
)

var addressTestColumns = []string{
	"id", "cep", "number", "complement", "street", "neighborhood",
	"city", "state", "created_at", "updated_at",
}

func TestPostgresAddressRepo_CreateAddress_UppercasesState(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	now := time.Now()
	mockPool.ExpectQuery(`INSERT INTO addresses`).
		WithArgs("01001000", "100", pgxmock.AnyArg(), "Praca da Se", "Se", "Sao Paulo", "SP").
		WillReturnRows(pgxmock.NewRows(addressTestColumns).
			AddRow(id, "01001000", "100", nil, "Praca da Se", "Se", "Sao Paulo", "SP", now, now))

	repo := NewPostgresAddressRepo(mockPool, discardLogger())
	addr, err := repo.CreateAddress(context.Background(), types.CreateAddressParams{
		Cep:          "01001000",
		Number:       "100",
		Street:       "Praca da Se",
		Neighborhood: "Se",
		City:         "Sao Paulo",
		State:        "sp",
	})
	require.NoError(t, err)
	assert.Equal(t, id, addr.ID)
	assert.Equal(t, "SP", addr.State)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresAddressRepo_GetAddressByID_NotFound(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	mockPool.ExpectQuery(`SELECT id, cep, number`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(addressTestColumns))

	repo := NewPostgresAddressRepo(mockPool, discardLogger())
	_, err = repo.GetAddressByID(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestPostgresAddressRepo_UpdateAddress_BuildsPartialSet(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	now := time.Now()
	city := "Campinas"
	mockPool.ExpectQuery(`UPDATE addresses SET city = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs("Campinas", pgxmock.AnyArg(), id).
		WillReturnRows(pgxmock.NewRows(addressTestColumns).
			AddRow(id, "01001000", "100", nil, "Praca da Se", "Se", "Campinas", "SP", now, now))

	repo := NewPostgresAddressRepo(mockPool, discardLogger())
	addr, err := repo.UpdateAddress(context.Background(), id, types.UpdateAddressParams{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Campinas", addr.City)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresAddressRepo_UpdateAddress_EmptyPatchReadsBack(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	now := time.Now()
	mockPool.ExpectQuery(`SELECT id, cep, number`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(addressTestColumns).
			AddRow(id, "01001000", "100", nil, "Praca da Se", "Se", "Sao Paulo", "SP", now, now))

	repo := NewPostgresAddressRepo(mockPool, discardLogger())
	addr, err := repo.UpdateAddress(context.Background(), id, types.UpdateAddressParams{})
	require.NoError(t, err)
	assert.Equal(t, id, addr.ID)
}

func TestPostgresAddressRepo_GetAddressesByCityPaged(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	now := time.Now()
	mockPool.ExpectQuery(`SELECT count\(\*\) FROM addresses WHERE lower\(city\) = lower\(\$1\)`).
		WithArgs("Sao Paulo").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(23)))
	mockPool.ExpectQuery(`SELECT id, cep, number.+LIMIT \$2 OFFSET \$3`).
		WithArgs("Sao Paulo", 10, 20).
		WillReturnRows(pgxmock.NewRows(addressTestColumns).
			AddRow(uuid.New(), "01001000", "100", nil, "Praca da Se", "Se", "Sao Paulo", "SP", now, now))

	repo := NewPostgresAddressRepo(mockPool, discardLogger())
	page, err := repo.GetAddressesByCityPaged(context.Background(), "Sao Paulo",
		types.PageRequest{PageNumber: 2, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(23), page.TotalElements)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Content, 1)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
