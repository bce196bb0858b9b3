package models

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseCategory classifies an exercise
type ExerciseCategory string

const (
	CategoryStrength    ExerciseCategory = "strength"
	CategoryFlexibility ExerciseCategory = "flexibility"
	CategoryEndurance   ExerciseCategory = "endurance"
	CategorySkill       ExerciseCategory = "skill"
)

// Difficulty is the level an exercise targets
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Exercise is a catalogue entry
type Exercise struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     ExerciseCategory `json:"category"`
	Difficulty   Difficulty       `json:"difficulty"`
	Instructions string           `json:"instructions"`
	ImageURL     string           `json:"imageUrl,omitempty"`
	VideoURL     string           `json:"videoUrl,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// TrainingExercise is one exercise performed within a session
type TrainingExercise struct {
	ExerciseID uuid.UUID `json:"exerciseId" validate:"required"`
	Sets       int       `json:"sets" validate:"gte=1"`
	Reps       int       `json:"reps" validate:"gte=1"`
	Weight     *float64  `json:"weight,omitempty" validate:"omitempty,gte=0"`
	Notes      string    `json:"notes,omitempty"`
}

// TrainingReport records one training session
type TrainingReport struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"userId"`
	Date      time.Time          `json:"date" validate:"required"`
	Exercises []TrainingExercise `json:"exercises" validate:"required,min=1,dive"`
	Duration  int                `json:"duration" validate:"gte=1"`
	Notes     string             `json:"notes,omitempty"`
	Progress  *float64           `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	CreatedAt time.Time          `json:"createdAt"`
}

// Product is an item sold in the shop
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description"`
	Price       float64   `json:"price" validate:"gte=0"`
	Category    string    `json:"category" validate:"required"`
	ImageURL    string    `json:"imageUrl" validate:"omitempty,url"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CreatedAt   time.Time `json:"createdAt"`
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of an order
type OrderItem struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gte=1"`
	Price     float64   `json:"price" validate:"gte=0"`
}

// Order is a shop purchase
type Order struct {
	ID         uuid.UUID   `json:"id"`
	UserID     uuid.UUID   `json:"userId"`
	Items      []OrderItem `json:"items" validate:"required,min=1,dive"`
	TotalPrice float64     `json:"totalPrice"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"createdAt"`
}
