package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/openintel/achboard/internal/domain"
	"github.com/openintel/achboard/internal/repository"
	apperrors "github.com/openintel/achboard/pkg/util"
)

// PermissionService resolves what a caller may do on a board.
type PermissionService struct {
	boards repository.BoardRepository
	perms  repository.PermissionRepository
}

// NewPermissionService constructs the service.
func NewPermissionService(boards repository.BoardRepository, perms repository.PermissionRepository) *PermissionService {
	return &PermissionService{boards: boards, perms: perms}
}

// Resolve loads the board, its permission scheme, and the caller's standing.
// A missing read_board permission is reported as not-found rather than
// forbidden so restricted boards stay invisible.
func (s *PermissionService) Resolve(ctx context.Context, actor *domain.User, boardID string) (*domain.Board, *domain.BoardPermissions, domain.PermissionContext, error) {
	board, err := s.boards.GetByID(ctx, boardID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, domain.PermissionContext{}, apperrors.NewNotFound("board", nil)
		}
		return nil, nil, domain.PermissionContext{}, err
	}

	perms, err := s.perms.Get(ctx, boardID)
	if err != nil {
		return nil, nil, domain.PermissionContext{}, err
	}

	permCtx := domain.PermissionContext{}
	if actor != nil {
		permCtx.Authenticated = true
		permCtx.IsStaff = actor.IsStaff
		permCtx.IsCreator = board.CreatorID != nil && *board.CreatorID == actor.ID
		if !permCtx.IsCreator && !permCtx.IsStaff {
			isCollab, err := s.perms.IsCollaborator(ctx, boardID, actor.ID)
			if err != nil {
				return nil, nil, domain.PermissionContext{}, err
			}
			permCtx.IsCollaborator = isCollab
		}
	}

	if board.Removed && !permCtx.IsStaff {
		return nil, nil, domain.PermissionContext{}, apperrors.NewNotFound("board", nil)
	}
	if !perms.Allows(permCtx, domain.PermReadBoard) {
		return nil, nil, domain.PermissionContext{}, apperrors.NewNotFound("board", nil)
	}
	return board, perms, permCtx, nil
}

// Require resolves the board and checks the named permission, mapping a
// refusal to forbidden since the caller could already read the board.
func (s *PermissionService) Require(ctx context.Context, actor *domain.User, boardID string, perm domain.Permission) (*domain.Board, *domain.BoardPermissions, domain.PermissionContext, error) {
	board, perms, permCtx, err := s.Resolve(ctx, actor, boardID)
	if err != nil {
		return nil, nil, domain.PermissionContext{}, err
	}
	if !perms.Allows(permCtx, perm) {
		return nil, nil, domain.PermissionContext{}, apperrors.NewForbidden("insufficient board permissions")
	}
	return board, perms, permCtx, nil
}

func viewerFor(actor *domain.User) repository.Viewer {
	if actor == nil {
		return repository.Viewer{}
	}
	return repository.Viewer{UserID: &actor.ID, IsStaff: actor.IsStaff}
}
