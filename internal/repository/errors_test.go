package repository

import (
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"mysql duplicate", fmt.Errorf("insert: %w", &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), ErrDuplicate},
		{"postgres duplicate", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"gorm duplicate", gorm.ErrDuplicatedKey, ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(tt.err))
		})
	}

	other := &gomysql.MySQLError{Number: 1045}
	assert.True(t, errors.Is(translate(other), other))
	assert.False(t, isDuplicate(&pgconn.PgError{Code: "23503"}))
}

func TestEmployeePrefix(t *testing.T) {
	assert.Equal(t, "ADM", employeePrefix("admin"))
	assert.Equal(t, "MGR", employeePrefix("manager"))
	assert.Equal(t, "INV", employeePrefix("inventory"))
	assert.Equal(t, "BIL", employeePrefix("biller"))
	assert.Equal(t, "EMP", employeePrefix("guest"))
}

func TestFollowingEmployeeID(t *testing.T) {
	assert.Equal(t, "BIL001", followingEmployeeID("BIL", ""))
	assert.Equal(t, "BIL010", followingEmployeeID("BIL", "BIL009"))
	assert.Equal(t, "ADM1000", followingEmployeeID("ADM", "ADM999"))
	assert.Equal(t, "MGR001", followingEmployeeID("MGR", "garbage"))
}
