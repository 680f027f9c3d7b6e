package task

import (
	"CloudVault/config"
	"CloudVault/internal/mq"
	"CloudVault/internal/repo"
	"CloudVault/model"
	"CloudVault/utils"
	"context"
	"fmt"
	"html"
	"strings"
	"time"
)

const KindFriendShare = "friend_share"

// FriendShareNotice describes a file sent from one friend to another.
type FriendShareNotice struct {
	ShareID    uint64
	ReceiverID uint64
	Recipient  string
	Sender     string
	FileName   string
	Message    string
}

// SendMail delivers one message. Tests replace it.
var SendMail = utils.SendMail

// publish hands a message to the broker. Tests replace it.
var publish = func(ctx context.Context, msg mq.NotifyMessage) error {
	publisher, err := mq.GetPublisher()
	if err != nil {
		return err
	}
	return publisher.Publish(ctx, msg)
}

func friendShareMail(n FriendShareNotice) (string, string) {
	subject := fmt.Sprintf("%s shared \"%s\" with you", n.Sender, n.FileName)
	var b strings.Builder
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(n.Sender))
	b.WriteString(" sent you the file <strong>")
	b.WriteString(html.EscapeString(n.FileName))
	b.WriteString("</strong>.</p>")
	if n.Message != "" {
		b.WriteString("<blockquote>")
		b.WriteString(html.EscapeString(n.Message))
		b.WriteString("</blockquote>")
	}
	fmt.Fprintf(&b, `<p><a href="%s/friend-shares">Open your inbox</a> to accept or reject it.</p>`,
		html.EscapeString(strings.TrimRight(config.AppConfig.FrontendURL, "/")))
	return subject, b.String()
}

// EnqueueFriendShareNotice persists a mail task for the receiver and
// publishes it. It does nothing when notifications are disabled or the
// receiver has no address.
func EnqueueFriendShareNotice(ctx context.Context, notice FriendShareNotice) (*model.NotifyTask, error) {
	if !config.AppConfig.NotifyEnabled || notice.Recipient == "" {
		return nil, nil
	}
	subject, body := friendShareMail(notice)
	t := &model.NotifyTask{
		UserID:    notice.ReceiverID,
		Kind:      KindFriendShare,
		Recipient: notice.Recipient,
		Subject:   subject,
		Body:      body,
		Status:    model.NotifyStatusPending,
	}
	if err := repo.Db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	if err := publish(ctx, mq.NotifyMessage{TaskID: t.ID}); err != nil {
		MarkFailed(ctx, t.ID, err)
		return nil, err
	}
	return t, nil
}

// ProcessNotifyTask sends the mail of one task. A task already sent, or
// claimed by another worker, is skipped.
func ProcessNotifyTask(ctx context.Context, taskID uint64) error {
	var t model.NotifyTask
	if err := repo.Db.WithContext(ctx).Where("id = ?", taskID).First(&t).Error; err != nil {
		return err
	}
	if t.Status == model.NotifyStatusSent || t.Status == model.NotifyStatusFailed {
		return nil
	}
	startedAt := time.Now()
	res := repo.Db.WithContext(ctx).Model(&model.NotifyTask{}).
		Where("id = ? AND status IN ?", taskID, []string{model.NotifyStatusPending, model.NotifyStatusRetrying}).
		Updates(map[string]interface{}{
			"status":     model.NotifyStatusRunning,
			"started_at": &startedAt,
			"error_msg":  "",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	if err := SendMail(t.Recipient, t.Subject, t.Body); err != nil {
		return err
	}

	finishedAt := time.Now()
	return repo.Db.WithContext(ctx).Model(&model.NotifyTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":      model.NotifyStatusSent,
			"finished_at": &finishedAt,
		}).Error
}

// MarkRetrying records a failed attempt that will be retried at next.
func MarkRetrying(ctx context.Context, taskID uint64, attempt int, next time.Time, cause error) error {
	return repo.Db.WithContext(ctx).Model(&model.NotifyTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":        model.NotifyStatusRetrying,
			"retry_count":   attempt,
			"next_retry_at": &next,
			"error_msg":     cause.Error(),
		}).Error
}

// MarkFailed records a task that will not be retried.
func MarkFailed(ctx context.Context, taskID uint64, cause error) {
	finishedAt := time.Now()
	_ = repo.Db.WithContext(ctx).Model(&model.NotifyTask{}).
		Where("id = ?", taskID).
		Updates(map[string]interface{}{
			"status":      model.NotifyStatusFailed,
			"error_msg":   cause.Error(),
			"finished_at": &finishedAt,
		}).Error
}
