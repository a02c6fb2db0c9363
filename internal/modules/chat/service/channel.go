package chat

import (
	"fmt"
	"strings"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/entity"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

const separator = "_"

// ChannelID derives the id of the one-to-one conversation between a and b.
// It is symmetric and distinct pairs never share an id: identity ids may
// not contain the separator and a conversation needs two participants.
func ChannelID(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", fmt.Errorf("%w: both participants are required", apperror.ErrInvalidInput)
	}
	if strings.Contains(a, separator) || strings.Contains(b, separator) {
		return "", fmt.Errorf("%w: identity ids may not contain %q", apperror.ErrInvalidInput, separator)
	}
	if a == b {
		return "", fmt.Errorf("%w: cannot message yourself", apperror.ErrInvalidInput)
	}
	if b < a {
		a, b = b, a
	}
	return a + separator + b, nil
}

// TranscriptQuery selects the messages of one conversation, oldest first.
func TranscriptQuery(channelID string) docstore.Query {
	return docstore.Query{
		Collection: entity.CollectionMessages,
		Filters:    []docstore.Filter{docstore.Where(entity.FieldChatID, channelID)},
		OrderBy:    entity.FieldTimestamp,
		Direction:  docstore.Asc,
	}
}
