package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var errNotFound = errors.New("not found")

type seminar struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	ParticipantsCount int       `json:"participants_count"`
	CreatedAt         time.Time `json:"created_at"`
}

type round struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Number     int       `json:"number"`
	TeamsCount int       `json:"teams_count"`
	Teams      [][]int   `json:"teams"`
	CreatedAt  time.Time `json:"created_at"`
}

type store interface {
	Ping(ctx context.Context) error
	ListSeminars(ctx context.Context) ([]seminar, error)
	CreateSeminar(ctx context.Context, name string, participantsCount int) (seminar, error)
	GetSeminar(ctx context.Context, id int64) (seminar, error)
	DeleteSeminar(ctx context.Context, id int64) error
	CreateSession(ctx context.Context, seminarID int64, commitPolicy string) (int64, error)
	CreateRound(ctx context.Context, r round) (round, error)
	ListRounds(ctx context.Context, seminarID int64) ([]round, error)
}

type pgStore struct {
	db *sql.DB
}

func (s *pgStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *pgStore) ListSeminars(ctx context.Context) ([]seminar, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, participants_count, created_at FROM seminars ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seminars := []seminar{}
	for rows.Next() {
		var sm seminar
		if err := rows.Scan(&sm.ID, &sm.Name, &sm.ParticipantsCount, &sm.CreatedAt); err != nil {
			return nil, err
		}
		seminars = append(seminars, sm)
	}
	return seminars, rows.Err()
}

func (s *pgStore) CreateSeminar(ctx context.Context, name string, participantsCount int) (seminar, error) {
	sm := seminar{Name: name, ParticipantsCount: participantsCount}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO seminars (name, participants_count) VALUES ($1, $2) RETURNING id, created_at",
		name, participantsCount).Scan(&sm.ID, &sm.CreatedAt)
	return sm, err
}

func (s *pgStore) GetSeminar(ctx context.Context, id int64) (seminar, error) {
	sm := seminar{ID: id}
	err := s.db.QueryRowContext(ctx,
		"SELECT name, participants_count, created_at FROM seminars WHERE id = $1", id).
		Scan(&sm.Name, &sm.ParticipantsCount, &sm.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return seminar{}, errNotFound
	}
	return sm, err
}

func (s *pgStore) DeleteSeminar(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM seminars WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return errNotFound
	}
	return nil
}

func (s *pgStore) CreateSession(ctx context.Context, seminarID int64, commitPolicy string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO sessions (seminar_id, commit_policy) VALUES ($1, $2) RETURNING id",
		seminarID, commitPolicy).Scan(&id)
	return id, err
}

func (s *pgStore) CreateRound(ctx context.Context, r round) (round, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return round{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	err = tx.QueryRowContext(ctx,
		"INSERT INTO rounds (session_id, number, teams_count) VALUES ($1, $2, $3) RETURNING id, created_at",
		r.SessionID, r.Number, r.TeamsCount).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return round{}, fmt.Errorf("insert round: %w", err)
	}
	for i, members := range r.Teams {
		ids := make([]int64, len(members))
		for j, m := range members {
			ids[j] = int64(m)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO round_teams (round_id, team_index, members) VALUES ($1, $2, $3)",
			r.ID, i, pq.Array(ids)); err != nil {
			return round{}, fmt.Errorf("insert team %d: %w", i, err)
		}
	}
	return r, tx.Commit()
}

func (s *pgStore) ListRounds(ctx context.Context, seminarID int64) ([]round, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.session_id, r.number, r.teams_count, r.created_at, rt.members
		FROM rounds r
		JOIN sessions se ON se.id = r.session_id
		JOIN round_teams rt ON rt.round_id = r.id
		WHERE se.seminar_id = $1
		ORDER BY r.session_id, r.number, rt.team_index`, seminarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := []round{}
	for rows.Next() {
		var r round
		var members []int64
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Number, &r.TeamsCount, &r.CreatedAt, pq.Array(&members)); err != nil {
			return nil, err
		}
		if len(rounds) == 0 || rounds[len(rounds)-1].ID != r.ID {
			rounds = append(rounds, r)
		}
		team := make([]int, len(members))
		for i, m := range members {
			team[i] = int(m)
		}
		last := &rounds[len(rounds)-1]
		last.Teams = append(last.Teams, team)
	}
	return rounds, rows.Err()
}
