package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cosmium2004/Customer-Insights-sub000/internal/cache"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/domain"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/dto"
	"github.com/cosmium2004/Customer-Insights-sub000/internal/repository"
)

const maxHourlyRangeSeconds = 90 * 24 * 3600

var validGroupBy = map[string]bool{"channel": true, "hour": true, "day": true}

// InsightsService serves the customer view and the organization dashboard through the view cache
type InsightsService struct {
	profiles  repository.ProfileReader
	analytics repository.AnalyticsRepository
	views     *cache.Views
	recent    int
	log       *zap.Logger
}

// NewInsightsService creates a new insights service
func NewInsightsService(profiles repository.ProfileReader, analytics repository.AnalyticsRepository, views *cache.Views, recent int, log *zap.Logger) *InsightsService {
	return &InsightsService{
		profiles:  profiles,
		analytics: analytics,
		views:     views,
		recent:    recent,
		log:       log,
	}
}

// GetCustomerProfile returns the customer view. A customer of another organization is reported
// as domain.ErrCustomerNotFound.
func (s *InsightsService) GetCustomerProfile(ctx context.Context, customerID, organizationID string) (*domain.CustomerProfile, error) {
	profile, err := cache.GetOrLoad(ctx, s.views, cache.CustomerProfileKey(customerID),
		func(ctx context.Context) (*domain.CustomerProfile, error) {
			return s.profiles.GetCustomerProfile(ctx, customerID, organizationID, s.recent)
		})
	if err != nil {
		return nil, err
	}

	// The cached view is keyed by customer only
	if profile.Customer.OrganizationID != organizationID {
		return nil, domain.ErrCustomerNotFound
	}
	return profile, nil
}

// GetDashboard retrieves aggregated organization metrics
func (s *InsightsService) GetDashboard(ctx context.Context, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	if req.From > req.To {
		s.log.Warn("Invalid time range for dashboard",
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("organization_id", req.OrganizationID))
		return nil, fmt.Errorf("%w: from timestamp must be less than or equal to to timestamp", ErrInvalidRequest)
	}

	if req.GroupBy != "" {
		if !validGroupBy[req.GroupBy] {
			s.log.Warn("Invalid group_by value", zap.String("group_by", req.GroupBy))
			return nil, fmt.Errorf("%w: invalid group_by value: %s (supported: channel, hour, day)", ErrInvalidRequest, req.GroupBy)
		}

		rangeSeconds := req.To - req.From
		if req.GroupBy == "hour" && rangeSeconds > maxHourlyRangeSeconds {
			return nil, fmt.Errorf("%w: time range too large for hourly grouping (max 90 days, got %d days)",
				ErrInvalidRequest, rangeSeconds/(24*3600))
		}
	}

	key := cache.DashboardKey(req.OrganizationID, req.From, req.To, req.GroupBy)
	return cache.GetOrLoad(ctx, s.views, key, func(ctx context.Context) (*dto.DashboardResponse, error) {
		s.log.Info("Querying dashboard metrics",
			zap.String("organization_id", req.OrganizationID),
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("group_by", req.GroupBy))

		result, err := s.analytics.GetMetrics(ctx, repository.MetricsQuery{
			OrganizationID: req.OrganizationID,
			From:           req.From,
			To:             req.To,
			GroupBy:        req.GroupBy,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics from repository: %w", err)
		}

		response := &dto.DashboardResponse{
			OrganizationID:   req.OrganizationID,
			From:             req.From,
			To:               req.To,
			TotalCount:       result.TotalCount,
			UniqueCustomers:  result.UniqueCustomers,
			AverageSentiment: result.AverageSentiment,
			GroupBy:          req.GroupBy,
			Groups:           make([]dto.DashboardGroup, 0, len(result.Groups)),
		}
		for _, group := range result.Groups {
			response.Groups = append(response.Groups, dto.DashboardGroup{
				GroupValue:       group.GroupValue,
				TotalCount:       group.TotalCount,
				AverageSentiment: group.AverageSentiment,
			})
		}
		return response, nil
	})
}
