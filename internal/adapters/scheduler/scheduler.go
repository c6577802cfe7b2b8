package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsscheduler "github.com/aws/aws-sdk-go-v2/service/scheduler"
	"github.com/aws/aws-sdk-go-v2/service/scheduler/types"

	"giftr/internal/domain"
)

// SchedulerConfig holds configuration for creating a draw scheduler. Provider
// "eventbridge" creates one-shot EventBridge schedules that invoke the API
// destination pointed at the internal draw callback; anything else uses a
// no-op scheduler.
type SchedulerConfig struct {
	Provider        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	GroupName       string
	RoleArn         string
	TargetArn       string
}

// NewScheduler creates a DrawScheduler from config.
func NewScheduler(config SchedulerConfig) (domain.DrawScheduler, error) {
	switch config.Provider {
	case "eventbridge":
		if config.GroupName == "" || config.RoleArn == "" || config.TargetArn == "" {
			return nil, fmt.Errorf("eventbridge scheduler requires group name, role arn and target arn")
		}
		awsCfg := aws.Config{
			Region: config.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					config.AccessKeyID,
					config.SecretAccessKey,
					"",
				),
			),
		}
		return &eventBridgeScheduler{
			client:    awsscheduler.NewFromConfig(awsCfg),
			groupName: config.GroupName,
			roleArn:   config.RoleArn,
			targetArn: config.TargetArn,
		}, nil
	case "noop":
		return &noopScheduler{}, nil
	default:
		log.Printf("[SCHEDULER] Unknown scheduler provider %q, using noop", config.Provider)
		return &noopScheduler{}, nil
	}
}

type eventBridgeScheduler struct {
	client    *awsscheduler.Client
	groupName string
	roleArn   string
	targetArn string
}

type drawCallbackPayload struct {
	EventID string `json:"event_id"`
}

func scheduleName(eventID string) string {
	return "giftr-draw-" + eventID
}

// ScheduleDraw creates or replaces the one-shot schedule for an event. The
// schedule deletes itself after firing, so rescheduling a fired event starts
// from a clean slate.
func (s *eventBridgeScheduler) ScheduleDraw(ctx context.Context, eventID string, at time.Time) error {
	payload, err := json.Marshal(drawCallbackPayload{EventID: eventID})
	if err != nil {
		return fmt.Errorf("marshal callback payload: %w", err)
	}

	name := scheduleName(eventID)
	expression := fmt.Sprintf("at(%s)", at.UTC().Format("2006-01-02T15:04:05"))
	target := &types.Target{
		Arn:     aws.String(s.targetArn),
		RoleArn: aws.String(s.roleArn),
		Input:   aws.String(string(payload)),
		RetryPolicy: &types.RetryPolicy{
			MaximumRetryAttempts: aws.Int32(3),
		},
	}

	_, err = s.client.UpdateSchedule(ctx, &awsscheduler.UpdateScheduleInput{
		Name:                       aws.String(name),
		GroupName:                  aws.String(s.groupName),
		ScheduleExpression:         aws.String(expression),
		ScheduleExpressionTimezone: aws.String("UTC"),
		FlexibleTimeWindow:         &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
		ActionAfterCompletion:      types.ActionAfterCompletionDelete,
		Target:                     target,
	})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("update schedule: %w", err)
	}

	_, err = s.client.CreateSchedule(ctx, &awsscheduler.CreateScheduleInput{
		Name:                       aws.String(name),
		GroupName:                  aws.String(s.groupName),
		ScheduleExpression:         aws.String(expression),
		ScheduleExpressionTimezone: aws.String("UTC"),
		FlexibleTimeWindow:         &types.FlexibleTimeWindow{Mode: types.FlexibleTimeWindowModeOff},
		ActionAfterCompletion:      types.ActionAfterCompletionDelete,
		Target:                     target,
	})
	if err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// CancelDraw deletes the event's schedule. A missing schedule is not an
// error; it may have fired and deleted itself already.
func (s *eventBridgeScheduler) CancelDraw(ctx context.Context, eventID string) error {
	_, err := s.client.DeleteSchedule(ctx, &awsscheduler.DeleteScheduleInput{
		Name:      aws.String(scheduleName(eventID)),
		GroupName: aws.String(s.groupName),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

type noopScheduler struct{}

func (n *noopScheduler) ScheduleDraw(ctx context.Context, eventID string, at time.Time) error {
	log.Printf("[SCHEDULER] Draw for event %s would be scheduled at %s (noop)", eventID, at.Format(time.RFC3339))
	return nil
}

func (n *noopScheduler) CancelDraw(ctx context.Context, eventID string) error {
	log.Printf("[SCHEDULER] Draw schedule for event %s would be canceled (noop)", eventID)
	return nil
}
