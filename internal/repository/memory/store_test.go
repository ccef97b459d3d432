package memory_test

import (
	"testing"

	"github.com/iliyamo/filmorate/internal/repository"
	"github.com/iliyamo/filmorate/internal/repository/memory"
	"github.com/iliyamo/filmorate/internal/repository/storetest"
)

func TestStoreConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return memory.New()
	})
}
