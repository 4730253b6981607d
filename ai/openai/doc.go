// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai implements the ai interfaces against OpenAI-compatible
// APIs (OpenAI, Ollama, LocalAI, vLLM) via langchaingo.
//
// The completer carries the two prompt templates of the query pipeline:
// the grounded-answer template used by the first generation stage and the
// fuse-contexts template used by the second. Both run with temperature 0.
//
// Every remote call is bounded by the configured timeout; a timed-out
// call surfaces the same typed error as any other service failure, so
// callers apply their documented fallback path.
package openai
