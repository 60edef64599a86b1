package web

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/switchyardhq/switchyard/pkg/capability"
	"github.com/switchyardhq/switchyard/pkg/credentials"
	"github.com/switchyardhq/switchyard/pkg/provider"
	"github.com/switchyardhq/switchyard/pkg/registry"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusBadRequest).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(fiber.StatusNotFound).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(fiber.StatusInternalServerError).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleInvokeError maps the dispatch error taxonomy onto problem responses.
// Upstream detail is forwarded; internal detail is not.
func handleInvokeError(c fiber.Ctx, err error) error {
	switch {
	case registry.IsProviderNotFound(err):
		return notFound(c, "provider_not_found", "provider not found")

	case provider.IsCapabilityNotImplemented(err):
		return notFound(c, "capability_not_implemented", "capability not implemented by this provider")

	case credentials.IsCredentialMissing(err):
		problem := problems.NewStatusProblem(fiber.StatusUnauthorized).
			WithInstance(c.Path()).
			WithType("credential_missing").
			WithDetail("no active credential for this organization and provider")

		return c.Status(fiber.StatusUnauthorized).JSON(problem)

	case capability.IsValidationError(err):
		return badRequest(c, err.Error())

	case capability.IsRateLimited(err):
		problem := problems.NewStatusProblem(fiber.StatusTooManyRequests).
			WithInstance(c.Path()).
			WithType("upstream_rate_limited").
			WithDetail(err.Error())

		var rateLimited *capability.RateLimitedError
		if errors.As(err, &rateLimited) && rateLimited.RetryAfter > 0 {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rateLimited.RetryAfter.Seconds())))
		}

		return c.Status(fiber.StatusTooManyRequests).JSON(problem)

	case capability.IsTimeout(err):
		problem := problems.NewStatusProblem(fiber.StatusGatewayTimeout).
			WithInstance(c.Path()).
			WithType("upstream_timeout").
			WithDetail(err.Error())

		return c.Status(fiber.StatusGatewayTimeout).JSON(problem)

	case capability.IsUpstreamError(err):
		problem := problems.NewStatusProblem(fiber.StatusBadGateway).
			WithInstance(c.Path()).
			WithType("upstream_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		return internalError(c, err)
	}
}
