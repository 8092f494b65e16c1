package utils

import "strings"

const defaultServiceName = "go-registration-form"

func IsTracingEnabled() bool {
	return GetEnvBool("OTEL_TRACES_ENABLED", false)
}

func OTelServiceName() string {
	serviceName := GetEnvTrimmed("OTEL_SERVICE_NAME")
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	return strings.ToLower(serviceName)
}
