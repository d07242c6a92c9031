package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi/config"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		conf := config.New(ctx, "")

		return configureAccountProvisioning(ctx, stackConfig{
			fromEmail:           conf.Require("fromEmail"),
			welcomeEmailSubject: conf.Get("welcomeEmailSubject"),
			welcomeEmailBody:    conf.Get("welcomeEmailBody"),
			pollMaxAttempts:     conf.Get("pollMaxAttempts"),
		})
	})
}
