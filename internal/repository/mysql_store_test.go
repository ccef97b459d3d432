package repository_test

import (
	"testing"

	"github.com/iliyamo/filmorate/internal/repository/storetest"
)

func TestMySQLStoreConformance(t *testing.T) {
	storetest.Run(t, storetest.MySQL(t))
}
