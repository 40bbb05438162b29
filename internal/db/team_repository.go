package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stackassist-backend/internal/models"
)

// firestoreTeamRepository stores members in teamMembers and invites in teamInvites.
type firestoreTeamRepository struct {
	client  *firestore.Client
	members *firestoreCollection[models.TeamMember, *models.TeamMember]
	invites *firestoreCollection[models.TeamInvite, *models.TeamInvite]
	logger  *zap.Logger
}

// NewFirestoreTeamRepository creates the Firestore-backed TeamRepository.
func NewFirestoreTeamRepository(client *firestore.Client, logger *zap.Logger) TeamRepository {
	return &firestoreTeamRepository{
		client:  client,
		members: newFirestoreCollection[models.TeamMember](client, teamMembersCollection, ownerFieldOwnerID, logger),
		invites: newFirestoreCollection[models.TeamInvite](client, teamInvitesCollection, ownerFieldOwnerID, logger),
		logger:  logger,
	}
}

func (r *firestoreTeamRepository) ListMembers(ctx context.Context, ownerID string) ([]*models.TeamMember, error) {
	return r.members.List(ctx, ownerID)
}

func (r *firestoreTeamRepository) GetMember(ctx context.Context, ownerID, memberID string) (*models.TeamMember, error) {
	return r.members.Get(ctx, ownerID, memberID)
}

func (r *firestoreTeamRepository) ListInvites(ctx context.Context, ownerID string) ([]*models.TeamInvite, error) {
	return r.invites.List(ctx, ownerID)
}

func (r *firestoreTeamRepository) keyRef(k uniqueKey) *firestore.DocumentRef {
	return r.client.Collection(uniqueKeysCollection).Doc(k.docID())
}

// CreateMemberWithInvite writes member, invite and the member's email key atomically.
func (r *firestoreTeamRepository) CreateMemberWithInvite(ctx context.Context, member *models.TeamMember, invite *models.TeamInvite) error {
	if member.OwnerID == "" {
		return ErrMissingTenant
	}
	member.Email = NormalizeEmail(member.Email)
	invite.Email = member.Email
	invite.OwnerID = member.OwnerID

	memberRef := r.client.Collection(teamMembersCollection).NewDoc()
	inviteRef := r.client.Collection(teamInvitesCollection).NewDoc()
	member.ID = memberRef.ID
	invite.ID = inviteRef.ID
	key := memberKey(member)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(r.keyRef(key)); err == nil {
			return &ConflictError{Key: key.Field, Value: key.Value}
		} else if status.Code(err) != codes.NotFound {
			return translate(err)
		}
		if err := tx.Create(memberRef, member); err != nil {
			return err
		}
		if err := tx.Create(inviteRef, invite); err != nil {
			return err
		}
		return tx.Create(r.keyRef(key), uniqueKeyDoc{
			UserID:    member.OwnerID,
			Scope:     key.Scope,
			Field:     key.Field,
			RecordID:  member.ID,
			CreatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create team member: %w", translate(err))
	}
	return nil
}

// UpdateMember replaces the member document. The email is immutable.
func (r *firestoreTeamRepository) UpdateMember(ctx context.Context, ownerID, memberID string, member *models.TeamMember) error {
	return r.members.Update(ctx, ownerID, memberID, member)
}

// DeleteMember removes the member from teamMembers and releases its email key.
func (r *firestoreTeamRepository) DeleteMember(ctx context.Context, ownerID, memberID string) error {
	ref := r.client.Collection(teamMembersCollection).Doc(memberID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return translate(err)
		}
		member, err := r.members.owned(snap, ownerID)
		if err != nil {
			return err
		}
		if err := tx.Delete(ref); err != nil {
			return err
		}
		return tx.Delete(r.keyRef(memberKey(member)))
	})
	if err != nil {
		return fmt.Errorf("failed to delete team member '%s': %w", memberID, err)
	}
	return nil
}

func (r *firestoreTeamRepository) queryMembers(ctx context.Context, field, value string) ([]*models.TeamMember, error) {
	iter := r.client.Collection(teamMembersCollection).Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	members := make([]*models.TeamMember, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query team members by %s: %w", field, translate(err))
		}
		member, err := r.members.decode(snap)
		if err != nil {
			r.logger.Warn("skipping undecodable team member", zap.Error(err))
			continue
		}
		members = append(members, member)
	}
	return members, nil
}

func (r *firestoreTeamRepository) FindMembersByUserID(ctx context.Context, userID string) ([]*models.TeamMember, error) {
	return r.queryMembers(ctx, "userId", userID)
}

func (r *firestoreTeamRepository) FindMembersByEmail(ctx context.Context, email string) ([]*models.TeamMember, error) {
	return r.queryMembers(ctx, "email", NormalizeEmail(email))
}

// ActivateMember flips the member to active and accepts the owner's pending invites
// for the same email in one transaction.
func (r *firestoreTeamRepository) ActivateMember(ctx context.Context, member *models.TeamMember, userID string, at time.Time) error {
	memberRef := r.client.Collection(teamMembersCollection).Doc(member.ID)
	inviteQuery := r.client.Collection(teamInvitesCollection).
		Where("ownerId", "==", member.OwnerID).
		Where("email", "==", NormalizeEmail(member.Email)).
		Where("status", "==", models.InviteStatusPending)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(memberRef); err != nil {
			return translate(err)
		}
		invites, err := tx.Documents(inviteQuery).GetAll()
		if err != nil {
			return translate(err)
		}
		if err := tx.Update(memberRef, []firestore.Update{
			{Path: "status", Value: models.MemberStatusActive},
			{Path: "userId", Value: userID},
			{Path: "lastModified", Value: at},
		}); err != nil {
			return err
		}
		for _, inv := range invites {
			if err := tx.Update(inv.Ref, []firestore.Update{
				{Path: "status", Value: models.InviteStatusAccepted},
				{Path: "acceptedAt", Value: at},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to activate team member '%s': %w", member.ID, err)
	}
	member.Status = models.MemberStatusActive
	member.UserID = userID
	member.LastModified = at
	return nil
}

// UpdateInviteDelivery records which invitation emails went out.
func (r *firestoreTeamRepository) UpdateInviteDelivery(ctx context.Context, ownerID, inviteID string, delivery models.InviteDelivery) error {
	invite, err := r.invites.Get(ctx, ownerID, inviteID)
	if err != nil {
		return err
	}
	_, err = r.client.Collection(teamInvitesCollection).Doc(invite.ID).Update(ctx, []firestore.Update{
		{Path: "deliveryStatus", Value: delivery},
	})
	if err != nil {
		return fmt.Errorf("failed to update invite delivery '%s': %w", inviteID, translate(err))
	}
	return nil
}
