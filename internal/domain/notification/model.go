package notification

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	TypeFamilyCreated   = "FAMILY_CREATED"
	TypeJoinRequest     = "JOIN_REQUEST"
	TypeRequestApproved = "REQUEST_APPROVED"
	TypeRequestRejected = "REQUEST_REJECTED"
	TypeNewAlbum        = "NEW_ALBUM"
	TypeNewMedia        = "NEW_MEDIA"
	TypeNewComment      = "NEW_COMMENT"
	TypeNewLike         = "NEW_LIKE"
)

type Notification struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(32);not null"`
	Content   string    `gorm:"type:text;not null"`
	Read      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func newNotification(recipientID, kind, content string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		UserID:  recipientID,
		Type:    kind,
		Content: content,
	}
}

// Constructors below render the user-facing message for each fan-out event.
// Recipient selection stays with the domain that triggers the event.

func FamilyCreated(recipientID, familyName string) Notification {
	return newNotification(recipientID, TypeFamilyCreated,
		fmt.Sprintf("You created the family %q", familyName))
}

func JoinRequestSent(recipientID, familyName string) Notification {
	return newNotification(recipientID, TypeJoinRequest,
		fmt.Sprintf("Your request to join %q is pending approval", familyName))
}

func JoinRequestReceived(recipientID, requesterName, familyName string) Notification {
	return newNotification(recipientID, TypeJoinRequest,
		fmt.Sprintf("%s requested to join %q", requesterName, familyName))
}

func RequestApproved(recipientID, familyName string) Notification {
	return newNotification(recipientID, TypeRequestApproved,
		fmt.Sprintf("Your request to join %q was approved", familyName))
}

func RequestRejected(recipientID, familyName string) Notification {
	return newNotification(recipientID, TypeRequestRejected,
		fmt.Sprintf("Your request to join %q was rejected", familyName))
}

func AlbumCreated(recipientID, actorName, albumName string) Notification {
	return newNotification(recipientID, TypeNewAlbum,
		fmt.Sprintf("%s created the album %q", actorName, albumName))
}

func MediaAdded(recipientID, actorName string, count int, albumName string) Notification {
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	return newNotification(recipientID, TypeNewMedia,
		fmt.Sprintf("%s added %d %s to the album %q", actorName, count, noun, albumName))
}

func CommentAdded(recipientID, actorName string) Notification {
	return newNotification(recipientID, TypeNewComment,
		fmt.Sprintf("%s commented on your post", actorName))
}

func PostLiked(recipientID, actorName string) Notification {
	return newNotification(recipientID, TypeNewLike,
		fmt.Sprintf("%s liked your post", actorName))
}
