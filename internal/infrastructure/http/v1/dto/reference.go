package dto

import "millstock/internal/domain/reference"

// ReplaceTanksRequest swaps the tank table.
type ReplaceTanksRequest struct {
	Items []reference.Tank `json:"items"`
}

// ReplaceDensitiesRequest swaps the density table.
type ReplaceDensitiesRequest struct {
	Items []reference.Density `json:"items"`
}

// ReplaceSilosRequest swaps the silo table.
type ReplaceSilosRequest struct {
	Items []reference.Silo `json:"items"`
}
