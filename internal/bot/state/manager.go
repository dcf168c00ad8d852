package state

import "sync"

// Dialog states. A state names the input the bot is waiting for from
// that user.
const (
	None                     = "none"
	WaitingForMealPhoto      = "waiting_for_meal_photo"
	WaitingForMealCarbs      = "waiting_for_meal_carbs"
	WaitingForBolusDose      = "waiting_for_bolus_dose"
	WaitingForLongDose       = "waiting_for_long_dose"
	WaitingForCorrectionDose = "waiting_for_correction_dose"
	WaitingForExerciseTime   = "waiting_for_exercise_time"
	WaitingForProfileValue   = "waiting_for_profile_value"
)

// StateManager tracks per-user dialog state and the temporary data a
// multi-step flow accumulates before it commits.
type StateManager interface {
	SetUserState(userID int64, state string)
	GetUserState(userID int64) string
	SetTempData(userID int64, key string, value interface{})
	GetTempData(userID int64, key string) (interface{}, bool)
	ClearTempData(userID int64)
}

// Manager keeps dialog state in memory. It is the fallback when Redis
// is not configured; states are lost on restart.
type Manager struct {
	userStates map[int64]string
	tempData   map[int64]map[string]interface{}
	mu         sync.RWMutex
}

// NewManager creates a new in-memory state manager
func NewManager() *Manager {
	return &Manager{
		userStates: make(map[int64]string),
		tempData:   make(map[int64]map[string]interface{}),
	}
}

// SetUserState sets the state for a user
func (m *Manager) SetUserState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userStates[userID] = state
}

// GetUserState gets the state for a user
func (m *Manager) GetUserState(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, exists := m.userStates[userID]
	if !exists {
		return None
	}
	return state
}

// SetTempData sets temporary data for a user
func (m *Manager) SetTempData(userID int64, key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tempData[userID] == nil {
		m.tempData[userID] = make(map[string]interface{})
	}
	m.tempData[userID][key] = value
}

// GetTempData gets temporary data for a user
func (m *Manager) GetTempData(userID int64, key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userData, exists := m.tempData[userID]
	if !exists {
		return nil, false
	}
	value, exists := userData[key]
	return value, exists
}

// ClearTempData clears all temporary data for a user
func (m *Manager) ClearTempData(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tempData, userID)
}
