package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []Status{
	StatusReceived,
	StatusConfirmed,
	StatusPreparing,
	StatusOutForDelivery,
	StatusDelivered,
	StatusCanceled,
}

// TestCanTransition_Exhaustive перебирает все пары (from, to) и сверяет
// ответ CanTransition с ожидаемым множеством рёбер графа переходов
func TestCanTransition_Exhaustive(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusReceived, StatusConfirmed}:       true,
		{StatusReceived, StatusCanceled}:        true,
		{StatusConfirmed, StatusPreparing}:      true,
		{StatusPreparing, StatusOutForDelivery}: true,
		{StatusOutForDelivery, StatusDelivered}: true,
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			from, to := from, to
			t.Run(fmt.Sprintf("%s->%s", from, to), func(t *testing.T) {
				want := allowed[[2]Status{from, to}]
				assert.Equal(t, want, CanTransition(from, to))
			})
		}
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	// функция тотальная: на неизвестный статус она отвечает false, а не паникует
	assert.False(t, CanTransition(Status("UNKNOWN"), StatusConfirmed))
	assert.False(t, CanTransition(StatusReceived, Status("UNKNOWN")))
}

func TestCanTransition_Deterministic(t *testing.T) {
	// повтор с той же запрещённой парой всегда даёт тот же отказ
	for i := 0; i < 100; i++ {
		require.False(t, CanTransition(StatusDelivered, StatusConfirmed))
	}
}

func TestStatus_Terminal(t *testing.T) {
	// из терминальных статусов нет ни одного перехода
	for _, s := range allStatuses {
		if s == StatusDelivered || s == StatusCanceled {
			assert.True(t, s.Terminal(), s)
			assert.Empty(t, AllowedTransitions[s], s)
		} else {
			assert.False(t, s.Terminal(), s)
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range allStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("CRIADO").Valid())
	assert.False(t, Status("").Valid())
}

// TestAllowedTransitions_NoUnknownTargets гарантирует, что таблица не содержит
// рёбер в статусы, которых нет в перечислении
func TestAllowedTransitions_NoUnknownTargets(t *testing.T) {
	known := make(map[Status]bool, len(allStatuses))
	for _, s := range allStatuses {
		known[s] = true
	}
	for from, next := range AllowedTransitions {
		require.True(t, known[from], from)
		for _, to := range next {
			require.True(t, known[to], to)
		}
	}
}
