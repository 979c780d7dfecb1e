package repository

import (
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// postgresDialectDB builds a DB handle carrying the postgres dialector
// without opening a connection.
func postgresDialectDB() *gorm.DB {
	return &gorm.DB{Config: &gorm.Config{Dialector: postgres.New(postgres.Config{})}}
}

func TestDBDialectName(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db should default to sqlite, got %s", got)
	}
	if got := dbDialectName(&gorm.DB{Config: &gorm.Config{}}); got != "sqlite" {
		t.Fatalf("missing dialector should default to sqlite, got %s", got)
	}
	if got := dbDialectName(postgresDialectDB()); got != "postgres" {
		t.Fatalf("postgres dialect name want postgres got %s", got)
	}
}

func TestLikeOperatorByDialect(t *testing.T) {
	if got := likeOperator(nil); got != "LIKE" {
		t.Fatalf("sqlite operator want LIKE got %s", got)
	}
	if got := likeOperator(postgresDialectDB()); got != "ILIKE" {
		t.Fatalf("postgres operator want ILIKE got %s", got)
	}
}

func TestBuildLikeCondition(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"slug", "name", " ", "description"})
	if argCount != 3 {
		t.Fatalf("arg count want 3 got %d", argCount)
	}
	want := "slug LIKE ? OR name LIKE ? OR description LIKE ?"
	if condition != want {
		t.Fatalf("condition want %q got %q", want, condition)
	}

	condition, argCount = buildLikeCondition(postgresDialectDB(), []string{"name"})
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
	if condition != "name ILIKE ?" {
		t.Fatalf("postgres condition want %q got %q", "name ILIKE ?", condition)
	}

	condition, argCount = buildLikeCondition(nil, nil)
	if argCount != 0 || condition != "" {
		t.Fatalf("empty columns want no condition, got %q with %d args", condition, argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%miga%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%miga%" {
			t.Fatalf("args[%d] want %%miga%% got %v", idx, arg)
		}
	}
}
