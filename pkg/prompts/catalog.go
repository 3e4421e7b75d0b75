package prompts

// AIStudio returns the AI Studio workflow prompts.
func AIStudio() *Set {
	appURL := Argument{Name: "app_url", Description: "URL to the AI Studio project edit page", Required: true}
	gcp := Argument{Name: "google_cloud_project", Description: "Google Cloud Project ID for deployment", Required: true}

	return MustSet(
		Prompt{
			Name:        "create-new-project",
			Description: "Complete workflow for creating a brand new AI Studio project from scratch, including authentication, project creation, GitHub setup, and deployment",
			Arguments: []Argument{
				{Name: "project_name", Description: "Name for the AI Studio project (will be prefixed with UUID)", Required: true},
				{Name: "project_description", Description: "Description of what the project should do", Required: true},
				gcp,
			},
			summary: "Create new AI Studio project: {{.project_name}}",
		},
		Prompt{
			Name:        "enhance-existing-project",
			Description: "Workflow for enhancing an existing AI Studio project with new features or bug fixes",
			Arguments: []Argument{
				appURL,
				{Name: "enhancement_description", Description: "Description of the enhancement or fix to implement", Required: true},
				gcp,
			},
			summary: "Enhance AI Studio project with: {{.enhancement_description}}",
		},
		Prompt{
			Name:        "add-ai-features",
			Description: "Add AI capabilities (voice, chatbot, TTS, etc.) to an AI Studio project",
			Arguments: []Argument{
				appURL,
				{Name: "features", Description: "Comma-separated list of AI features to add (e.g., 'voice-input,chatbot,text-to-speech')", Required: true},
			},
			summary: "Add AI features to project: {{.features}}",
		},
		Prompt{
			Name:        "troubleshoot-workflow",
			Description: "Debug and fix common AI Studio workflow issues",
			Arguments: []Argument{
				{Name: "issue_description", Description: "Description of the issue you're experiencing", Required: true},
			},
			summary: "Troubleshoot issue: {{.issue_description}}",
		},
	)
}

// V0 returns the v0 deployment prompts.
func V0() *Set {
	return MustSet(
		Prompt{
			Name:        "deploy-to-vercel",
			Description: "Complete deployment workflow: pull changes from Git, publish to Vercel, and optionally view the deployed app",
			Arguments: []Argument{
				{Name: "v0_chat_url", Description: "URL to the v0 chat/project page (e.g., https://v0.app/chat/PROJECT_ID)", Required: true},
				{Name: "production_url", Description: "URL to the production application (e.g., https://myapp.vercel.app)", Required: true},
				{Name: "view_after_deploy", Description: "Whether to open the production app after deployment (true/false)"},
			},
			summary: "Deploy v0 project to Vercel",
		},
		Prompt{
			Name:        "update-from-git",
			Description: "Pull latest changes from Git repository into the v0 editor",
			Arguments: []Argument{
				{Name: "v0_chat_url", Description: "URL to the v0 chat/project page", Required: true},
			},
			summary: "Pull latest Git changes into v0",
		},
		Prompt{
			Name:        "test-deployment",
			Description: "Test and verify a deployed Vercel application",
			Arguments: []Argument{
				{Name: "production_url", Description: "URL to the production application to test", Required: true},
			},
			summary: "Test deployed application at {{.production_url}}",
		},
		Prompt{
			Name:        "troubleshoot-deployment",
			Description: "Debug common v0 and Vercel deployment issues",
			Arguments: []Argument{
				{Name: "issue_description", Description: "Description of the deployment issue", Required: true},
			},
			summary: "Troubleshoot deployment issue",
		},
	)
}
